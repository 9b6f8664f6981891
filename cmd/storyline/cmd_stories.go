package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"storyline/cmd/storyline/pages"
	"storyline/cmd/storyline/ui"
	"storyline/internal/api"
	"storyline/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// showConcurrency bounds parallel GET /stories/{id} calls.
const showConcurrency = 4

func newStoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stories",
		Short: "List, read and add stories",
	}
	cmd.AddCommand(newStoriesListCmd())
	cmd.AddCommand(newStoriesShowCmd())
	cmd.AddCommand(newStoriesAddCmd())
	return cmd
}

func newStoriesListCmd() *cobra.Command {
	var page, size int
	var withLocation bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("size") {
				size = a.cfg.Stories.PageSize
			}
			if !cmd.Flags().Changed("location") {
				withLocation = a.cfg.Stories.WithLocation
			}
			stories, err := a.client.ListStories(cmd.Context(), api.ListQuery{Page: page, Size: size, Location: withLocation})
			if err != nil {
				return fmt.Errorf("failed to load stories: %s", api.Message(err))
			}
			printStoryList(cmd.OutOrStdout(), stories, time.Now())
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 10, "Stories per page")
	cmd.Flags().BoolVar(&withLocation, "location", false, "Only stories with a location")
	return cmd
}

func printStoryList(w io.Writer, stories []api.Story, now time.Time) {
	if len(stories) == 0 {
		fmt.Fprintln(w, "No stories available.")
		return
	}
	for _, st := range stories {
		fmt.Fprintf(w, "%s  %s  %s\n", st.ID, st.Name, ui.FormatCreated(st.CreatedAt, now))
		fmt.Fprintf(w, "    %s\n", ui.Truncate(ui.PlainText(st.Description), ui.CardDescriptionRunes))
		if st.HasLocation() {
			fmt.Fprintf(w, "    Lat %.6f, Lon %.6f\n", *st.Lat, *st.Lon)
		}
	}
}

func newStoriesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>...",
		Short: "Show one or more stories in full",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			stories := make([]api.Story, len(args))
			errs := make([]error, len(args))
			var g errgroup.Group
			g.SetLimit(showConcurrency)
			for i, id := range args {
				g.Go(func() error {
					stories[i], errs[i] = a.client.GetStory(cmd.Context(), id)
					return nil
				})
			}
			_ = g.Wait()

			out := cmd.OutOrStdout()
			failed := 0
			for i, id := range args {
				if i > 0 {
					fmt.Fprintln(out, strings.Repeat("─", 40))
				}
				if errs[i] != nil {
					failed++
					fmt.Fprintf(out, "%s: Failed to fetch story: %s\n", id, api.Message(errs[i]))
					continue
				}
				printStory(out, stories[i], a.cfg.UI.MarkdownStyle, a.cfg.UI.WordWrap, time.Now())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d stories could not be fetched", failed, len(args))
			}
			return nil
		},
	}
}

func printStory(w io.Writer, st api.Story, style string, width int, now time.Time) {
	fmt.Fprintf(w, "%s\n", st.Name)
	fmt.Fprintf(w, "Posted by: %s\n", st.Name)
	fmt.Fprintf(w, "On: %s\n", ui.FormatCreated(st.CreatedAt, now))
	fmt.Fprintf(w, "Photo: %s\n", st.PhotoURL)
	fmt.Fprintln(w, strings.TrimRight(ui.Markdown(ui.PlainText(st.Description), style, width), "\n"))
	if st.HasLocation() {
		fmt.Fprintf(w, "Location: Lat %v, Lon %v\n", *st.Lat, *st.Lon)
		fmt.Fprintf(w, "Map: %s\n", pages.MapURL(*st.Lat, *st.Lon))
	} else {
		fmt.Fprintln(w, "Location: Not provided")
	}
}

func newStoriesAddCmd() *cobra.Command {
	var description, photo string
	var lat, lon float64
	var guest bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a story with a photo and an optional location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			draft := api.StoryDraft{Description: description}
			if cmd.Flags().Changed("lat") != cmd.Flags().Changed("lon") {
				return fmt.Errorf("provide both --lat and --lon, or neither")
			}
			if cmd.Flags().Changed("lat") {
				draft.Lat, draft.Lon = &lat, &lon
			}
			if photo != "" {
				f, err := os.Open(photo)
				if err != nil {
					return fmt.Errorf("could not open photo: %w", err)
				}
				defer f.Close()
				draft.Photo = f
				draft.PhotoName = filepath.Base(photo)
			}

			create := a.client.CreateStory
			success := "Story added successfully!"
			if guest {
				create = a.client.CreateStoryAsGuest
				success = "Story added as guest successfully!"
			}
			if _, err := create(cmd.Context(), draft); err != nil {
				return fmt.Errorf("failed to add story: %s", api.Message(err))
			}
			logging.CLI("story added (guest=%v, located=%v)", guest, draft.Lat != nil)
			fmt.Fprintln(cmd.OutOrStdout(), success)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Story text (required)")
	cmd.Flags().StringVar(&photo, "photo", "", "Path to the photo (required)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	cmd.Flags().BoolVar(&guest, "guest", false, "Post without the session token")
	return cmd
}
