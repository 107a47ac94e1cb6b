package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluesky-go/atproto/atid"
	"github.com/bluesky-go/atproto/xrpc"
)

func commandGetRecord() *cobra.Command {
	var service string

	cmd := &cobra.Command{
		Use:   "get-record <repo-did> <collection-nsid> <rkey>",
		Short: "Fetch a single record via com.atproto.repo.getRecord",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(mustFlag(cmd, "log-level"), mustFlag(cmd, "log-format"))
			if err != nil {
				return err
			}

			repo, ok := atid.ParseDID(args[0])
			if !ok {
				return fmt.Errorf("%q is not a valid DID", args[0])
			}
			collection, ok := atid.ParseNSID(args[1])
			if !ok {
				return fmt.Errorf("%q is not a valid NSID", args[1])
			}

			client := xrpc.NewClient(service, xrpc.WithLogger(logger))
			rec, err := client.GetRecord(context.Background(), repo, collection, args[2])
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "https://bsky.social", "PDS/service base URL")
	return cmd
}
