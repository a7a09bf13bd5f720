package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ebogdum/archivefs/archive"
)

var (
	mediaFlag string
	highFlag  string
	lowFlag   string
)

func addSaveDataCommands(root *cobra.Command) {
	extCmd := &cobra.Command{
		Use:   "extsavedata",
		Short: "Provision extra-data containers",
	}
	extCreate := &cobra.Command{
		Use:   "create",
		Short: "Create an extra-data container",
		RunE: runProvision("extsavedata create", func(m *archive.Manager, high, low uint32) error {
			media, err := parseMedia(mediaFlag)
			if err != nil {
				return err
			}
			return m.CreateExtSaveData(media, high, low)
		}),
	}
	extDelete := &cobra.Command{
		Use:   "delete",
		Short: "Delete an extra-data container and its contents",
		RunE: runProvision("extsavedata delete", func(m *archive.Manager, high, low uint32) error {
			media, err := parseMedia(mediaFlag)
			if err != nil {
				return err
			}
			return m.DeleteExtSaveData(media, high, low)
		}),
	}
	for _, c := range []*cobra.Command{extCreate, extDelete} {
		c.Flags().StringVar(&mediaFlag, "media", "sdmc", "Media holding the container: nand or sdmc")
	}
	extCmd.AddCommand(extCreate, extDelete)

	sysCmd := &cobra.Command{
		Use:   "systemsavedata",
		Short: "Provision system save containers",
	}
	sysCreate := &cobra.Command{
		Use:   "create",
		Short: "Create a system save container",
		RunE:  runProvision("systemsavedata create", (*archive.Manager).CreateSystemSaveData),
	}
	sysDelete := &cobra.Command{
		Use:   "delete",
		Short: "Delete a system save container and its contents",
		RunE:  runProvision("systemsavedata delete", (*archive.Manager).DeleteSystemSaveData),
	}
	sysCmd.AddCommand(sysCreate, sysDelete)

	for _, c := range []*cobra.Command{extCreate, extDelete, sysCreate, sysDelete} {
		c.Flags().StringVar(&highFlag, "high", "0", "High word of the save id (hex)")
		c.Flags().StringVar(&lowFlag, "low", "", "Low word of the save id (hex)")
		_ = c.MarkFlagRequired("low")
	}

	root.AddCommand(extCmd, sysCmd)
}

func runProvision(label string, op func(m *archive.Manager, high, low uint32) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		high, low, err := parseIDPair(highFlag, lowFlag)
		if err != nil {
			return err
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer closeInto(&err, rt.close)

		if err := op(rt.manager, high, low); err != nil {
			return fmt.Errorf("%s failed: %w", label, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s %08x/%08x\n", label, high, low)
		return nil
	}
}
