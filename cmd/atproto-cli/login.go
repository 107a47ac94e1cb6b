package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluesky-go/atproto/atid"
	"github.com/bluesky-go/atproto/identity"
	"github.com/bluesky-go/atproto/oauth"
)

func commandLogin() *cobra.Command {
	var (
		clientID     string
		redirectURI  string
		scope        string
		plcDirectory string
	)

	cmd := &cobra.Command{
		Use:   "login <handle-or-did>",
		Short: "Resolve the account's PDS and authorization server, then print the OAuth authorization URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID == "" || redirectURI == "" {
				return fmt.Errorf("--client-id and --redirect-uri are required")
			}

			ctx := context.Background()
			plc := identity.NewPLCResolver(plcDirectory, nil)
			web := identity.NewWebResolver(nil)
			dids := identity.NewCompositeResolver(plc, web)
			handles := identity.NewHandleResolver(nil)
			discoverer := identity.NewPDSDiscoverer(dids, handles)

			var pds string
			var err error
			if did, ok := atid.ParseDID(args[0]); ok {
				pds, err = discoverer.ResolveDID(ctx, did)
			} else if handle, ok := atid.ParseHandle(args[0]); ok {
				pds, err = discoverer.ResolveHandle(ctx, handle)
			} else {
				return fmt.Errorf("%q is neither a valid DID nor a valid handle", args[0])
			}
			if err != nil {
				return err
			}

			authServer, err := identity.DiscoverAuthServer(ctx, nil, pds)
			if err != nil {
				return err
			}

			client, err := oauth.NewClient(oauth.Config{
				ClientID:    clientID,
				RedirectURI: redirectURI,
			})
			if err != nil {
				return err
			}

			authURL, err := client.Authorize(ctx, authServer, scope)
			if err != nil {
				return err
			}
			fmt.Println(authURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client ID (a URL)")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "OAuth redirect URI")
	cmd.Flags().StringVar(&scope, "scope", "atproto", "OAuth scope to request")
	cmd.Flags().StringVar(&plcDirectory, "plc-directory", identity.DefaultPLCDirectory, "base URL for PLC DID resolution")
	return cmd
}
