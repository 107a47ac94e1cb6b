package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluesky-go/atproto/atid"
	"github.com/bluesky-go/atproto/identity"
)

func commandResolve() *cobra.Command {
	var plcDirectory string

	cmd := &cobra.Command{
		Use:   "resolve <handle-or-did>",
		Short: "Resolve a handle or DID to its DID document and PDS endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(mustFlag(cmd, "log-level"), mustFlag(cmd, "log-format"))
			if err != nil {
				return err
			}

			plc := identity.NewPLCResolver(plcDirectory, nil)
			web := identity.NewWebResolver(nil)
			dids := identity.NewCompositeResolver(plc, web)
			handles := identity.NewHandleResolver(nil)
			discoverer := identity.NewPDSDiscoverer(dids, handles)

			ctx := context.Background()
			var doc *identity.Document
			var pds string

			if did, ok := atid.ParseDID(args[0]); ok {
				logger.Infof("resolving DID %s", did.String())
				doc, err = dids.Resolve(ctx, did)
				if err != nil {
					return err
				}
				pds, err = discoverer.ResolveDID(ctx, did)
			} else if handle, ok := atid.ParseHandle(args[0]); ok {
				logger.Infof("resolving handle %s", handle.String())
				resolvedDID, rerr := handles.Resolve(ctx, handle)
				if rerr != nil {
					return rerr
				}
				doc, err = dids.Resolve(ctx, resolvedDID)
				if err != nil {
					return err
				}
				pds, err = discoverer.ResolveHandle(ctx, handle)
			} else {
				return fmt.Errorf("%q is neither a valid DID nor a valid handle", args[0])
			}
			if err != nil {
				logger.Warnf("PDS discovery failed: %v", err)
			}

			out, mErr := json.MarshalIndent(struct {
				Document *identity.Document `json:"didDocument"`
				PDS      string             `json:"pdsEndpoint,omitempty"`
			}{doc, pds}, "", "  ")
			if mErr != nil {
				return mErr
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&plcDirectory, "plc-directory", identity.DefaultPLCDirectory, "base URL for PLC DID resolution")
	return cmd
}

func mustFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
