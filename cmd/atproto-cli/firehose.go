package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bluesky-go/atproto/firehose"
)

func commandFirehose() *cobra.Command {
	var (
		relayURL  string
		cursor    int64
		hasCursor bool
	)

	cmd := &cobra.Command{
		Use:   "firehose",
		Short: "Tail the relay's com.atproto.sync.subscribeRepos stream, printing one JSON event per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(mustFlag(cmd, "log-level"), mustFlag(cmd, "log-format"))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := firehose.NewClient(nil, relayURL).WithLogger(logger)

			var cursorPtr *int64
			if hasCursor {
				cursorPtr = &cursor
			}

			events, errs, err := client.SubscribeRepos(ctx, cursorPtr)
			if err != nil {
				return err
			}
			defer client.Disconnect()

			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					out, mErr := json.Marshal(ev)
					if mErr != nil {
						logger.Warnf("failed to marshal event: %v", mErr)
						continue
					}
					fmt.Println(string(out))
				case err := <-errs:
					return err
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&relayURL, "relay-url", firehose.DefaultRelayURL, "WebSocket firehose endpoint")
	cmd.Flags().Int64Var(&cursor, "cursor", 0, "resume cursor (sequence number)")
	cmd.Flags().BoolVar(&hasCursor, "with-cursor", false, "set to treat --cursor as provided (0 is a valid cursor)")
	return cmd
}
