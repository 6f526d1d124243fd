package snowflake

import (
	"fmt"
	"time"

	"github.com/sony/sonyflake/v2"
	"github.com/spf13/viper"
)

var node *sonyflake.Sonyflake

// MustInit builds the generator for submission IDs. Every sbatch invocation
// is tagged with one so scheduler-side jobs can be traced back to a run.
func MustInit(cfg *viper.Viper) {
	// 1. epoch for the timestamp bits, from config
	st, err := time.Parse(time.DateOnly, cfg.GetString("snowflake.start_time"))
	if err != nil {
		panic(fmt.Errorf("parse start time failed, err:%w", err))
	}
	settings := sonyflake.Settings{
		StartTime: st,
		MachineID: func() (int, error) {
			return cfg.GetInt("snowflake.machine_id"), nil
		},
		CheckMachineID: func(int) bool { return true },
	}
	node, err = sonyflake.New(settings)
	if err != nil {
		panic(fmt.Errorf("init sonyflake failed, err:%w", err))
	}
}

// NextID returns a unique submission ID.
func NextID() (int64, error) {
	if node == nil {
		return 0, fmt.Errorf("snowflake generator not initialized")
	}
	return node.NextID()
}
