package service

import (
	"context"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/conf"
	"github.com/hlecates/artifact-ijcar26-luna/internal/store"
)

// SyncBenchmarks mirrors the published benchmark sets from the object store
// into the local benchmark directory and returns how many files were fetched.
func SyncBenchmarks(ctx context.Context, cfg *viper.Viper) (int, error) {
	st, err := store.New(conf.GetStoreConfig(cfg))
	if err != nil {
		return 0, err
	}

	dir := conf.GetBenchmarksConfig(cfg).Dir
	fetched, err := st.Sync(ctx, dir)
	if err != nil {
		return fetched, err
	}

	zap.L().Info("benchmark sync finished",
		zap.String("dir", dir),
		zap.Int("fetched", fetched),
	)
	return fetched, nil
}
