package main

import (
	"fmt"

	"storyline/internal/api"
	"storyline/internal/config"

	"github.com/spf13/cobra"
)

func newNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Manage the push notification subscription",
	}
	cmd.AddCommand(newNotifySubscribeCmd())
	cmd.AddCommand(newNotifyUnsubscribeCmd())
	return cmd
}

func newNotifySubscribeCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Forward a Web Push subscription to the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if file == "" {
				file = config.ResolvePath(a.workspace, a.cfg.Push.SubscriptionFile)
			}
			sub, err := api.LoadSubscription(file)
			if err != nil {
				return err
			}
			if _, err := a.client.SubscribePush(cmd.Context(), sub); err != nil {
				return fmt.Errorf("push subscription failed: %s", api.Message(err))
			}
			if err := a.sessions.SetPushEndpoint(sub.Endpoint); err != nil {
				return fmt.Errorf("subscribed, but saving the endpoint failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Successfully subscribed to push notifications.")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "subscription", "", "Subscription JSON (default: push.subscription_file)")
	return cmd
}

func newNotifyUnsubscribeCmd() *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "unsubscribe",
		Short: "Remove the push subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if endpoint == "" {
				if endpoint, err = a.sessions.PushEndpoint(); err != nil {
					return err
				}
			}
			if endpoint == "" {
				return fmt.Errorf("no active push subscription found")
			}
			if _, err := a.client.UnsubscribePush(cmd.Context(), endpoint); err != nil {
				return fmt.Errorf("push unsubscription failed: %s", api.Message(err))
			}
			if err := a.sessions.SetPushEndpoint(""); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Successfully unsubscribed from push notifications.")
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Endpoint to remove (default: the stored one)")
	return cmd
}
