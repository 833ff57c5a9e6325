package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"github.com/mbalug7/go-sensor-node/pkg/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Validate a new execution table frame and print the resulting table",
	Long: `Decodes a new execution table frame as the node would receive it over the
radio and prints the armed table as YAML. Field rules that only produce a
warning on the node (unknown sensor, average out of range) are logged.

Example:
  sensor-node decode "12 04 13 a4 00 00 00 00 0a 00 04 01 f4 01 00 00 02 04 01"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		frame, err := hex.DecodeString(strings.Join(strings.Fields(args[0]), ""))
		if err != nil {
			return fmt.Errorf("failed to decode hex frame: %w", err)
		}
		t, err := table.Decode(frame, func(code protocol.ErrorCode) {
			logger.Warn("execution table field rejected", zap.Stringer("code", code))
		})
		if err != nil {
			return fmt.Errorf("execution table rejected: %w", err)
		}
		return printTable(cmd, t)
	},
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the execution table the node boots with",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := bootTable()
		if err != nil {
			return err
		}
		return printTable(cmd, t)
	},
}

// bootTable returns the configured boot table, nil config table means the default
func bootTable() (*table.Table, error) {
	if cfg.Table == "" {
		return table.Default(), nil
	}
	return table.LoadFile(cfg.Table)
}

func printTable(cmd *cobra.Command, t *table.Table) error {
	data, err := table.Marshal(t)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
