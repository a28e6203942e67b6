package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/canopy/internal/config"
	"github.com/vango-dev/canopy/pkg/dom/memdom"
	"github.com/vango-dev/canopy/pkg/snapshot"
)

// storeFlags override the snapshot section of the configuration.
type storeFlags struct {
	dir      string
	bucket   string
	prefix   string
	region   string
	endpoint string
}

func (f *storeFlags) apply(cfg *config.Config) {
	if f.dir != "" {
		cfg.Snapshot.Dir = f.dir
	}
	if f.bucket != "" {
		cfg.Snapshot.Bucket = f.bucket
	}
	if f.prefix != "" {
		cfg.Snapshot.Prefix = f.prefix
	}
	if f.region != "" {
		cfg.Snapshot.Region = f.region
	}
	if f.endpoint != "" {
		cfg.Snapshot.Endpoint = f.endpoint
	}
}

// openStore returns the bucket store when a bucket is configured and the
// directory store otherwise.
func openStore(cfg config.SnapshotConfig) (snapshot.Store, string, error) {
	if cfg.Bucket != "" {
		client := snapshot.NewS3Client(cfg.Region, cfg.Endpoint)
		return snapshot.NewS3Store(client, cfg.Bucket, cfg.Prefix), "s3://" + cfg.Bucket + "/" + cfg.Prefix, nil
	}
	store, err := snapshot.NewDirStore(cfg.Dir)
	if err != nil {
		return nil, "", err
	}
	return store, cfg.Dir, nil
}

func snapshotCmd(c *cli) *cobra.Command {
	flags := &storeFlags{}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save, list and show rendered snapshots",
		Long: `A snapshot is the rendered HTML of the app plus a YAML manifest of its
wrapper tree. Snapshots go to a directory, or to an S3 bucket when one is
configured.

Examples:
  canopy snapshot
  canopy snapshot list --dir out
  canopy snapshot show 0b6c... --bucket my-bucket --endpoint http://localhost:9000`,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.dir, "dir", "", "Snapshot directory")
	pf.StringVar(&flags.bucket, "bucket", "", "S3 bucket (takes precedence over --dir)")
	pf.StringVar(&flags.prefix, "prefix", "", "S3 key prefix")
	pf.StringVar(&flags.region, "region", "", "S3 region")
	pf.StringVar(&flags.endpoint, "endpoint", "", "S3 endpoint for S3-compatible storage")

	open := func() (snapshot.Store, *config.Config, string, error) {
		cfg, err := c.config()
		if err != nil {
			return nil, nil, "", err
		}
		flags.apply(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, nil, "", err
		}
		store, where, err := openStore(cfg.Snapshot)
		return store, cfg, where, err
	}

	save := &cobra.Command{
		Use:   "save",
		Short: "Render the app and store a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, where, err := open()
			if err != nil {
				return err
			}
			r, err := mountDemo(memdom.NewDocument(), cfg, c.logger(cmd))
			if err != nil {
				return err
			}
			snap, err := snapshot.Take(r)
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), snap); err != nil {
				return err
			}
			c.theme.success(cmd.OutOrStdout(), "Saved %s to %s", snap.ID, where)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshot ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, _, err := open()
			if err != nil {
				return err
			}
			ids, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	var manifest bool
	show := &cobra.Command{
		Use:   "show ID",
		Short: "Print the HTML of a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, _, err := open()
			if err != nil {
				return err
			}
			snap, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if manifest {
				data, err := snap.MarshalManifest()
				if err != nil {
					return err
				}
				_, err = w.Write(data)
				return err
			}
			fmt.Fprintln(w, snap.HTML)
			return nil
		},
	}
	show.Flags().BoolVar(&manifest, "manifest", false, "Print the YAML manifest instead of the HTML")

	// Bare "canopy snapshot" saves.
	cmd.Args = cobra.NoArgs
	cmd.RunE = save.RunE
	cmd.AddCommand(save, list, show)
	return cmd
}
