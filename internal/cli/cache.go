package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-profile-cache/cache"
)

// PurgeResult reports a cache purge.
type PurgeResult struct {
	Backend string `json:"backend"`
	Removed int    `json:"removed"`
}

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the configured cache",
	}
	cmd.AddCommand(newCachePurgeCommand(rootOpts))
	return cmd
}

func newCachePurgeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired entries from the persistent cache",
		Long: `Delete expired entries from the bolt cache file. Expired entries are
already treated as misses; purging only reclaims their space.

The memory backend evicts on its own, so purge reports nothing removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rootOpts.openContainer(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			out := rootOpts.formatter(cmd)
			result := PurgeResult{Backend: container.Config().Cache.Backend}

			bolt, ok := container.CacheClient().(cache.BoltClient)
			if !ok {
				return out.Success(result)
			}
			removed, err := bolt.Purge(commandContext(cmd))
			if err != nil {
				return out.Fail(err)
			}
			result.Removed = removed
			return out.Success(result)
		},
	}
}
