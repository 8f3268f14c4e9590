package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/classpoint/assistant/core/school"
)

var errNotConfirmed = errors.New("refusing to clear all data without --yes")

func (cli *commandLine) backupCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "write the whole document to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := cli.store.Backup(commandContext(cmd))
			if err != nil {
				return err
			}
			if output == "" {
				output = school.BackupFilename(nowFunc())
			}
			return cli.writeOutput(output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file ("-" for stdout; defaults to school-backup-<date>.json)`)
	return cmd
}

func (cli *commandLine) restoreCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "restore FILE",
		Short: "replace the whole document with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "reading backup")
			}
			if dryRun {
				return cli.restoreDiff(cmd, data)
			}
			if err = cli.store.Restore(commandContext(cmd), data); err != nil {
				return err
			}
			cli.printf("restored %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only print the changes the restore would make")
	return cmd
}

// restoreDiff prints a unified diff between the current document and the backup in data.
func (cli *commandLine) restoreDiff(cmd *cobra.Command, data []byte) error {
	doc, err := school.ParseBackup(data)
	if err != nil {
		return err
	}
	incoming, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding backup")
	}
	current, err := cli.store.Backup(commandContext(cmd))
	if err != nil {
		return err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(incoming)),
		FromFile: "current",
		ToFile:   "backup",
		Context:  2,
	})
	if err != nil {
		return errors.Wrap(err, "computing diff")
	}
	if diff == "" {
		cli.printf("no changes\n")
		return nil
	}
	cli.printf("%s", diff)
	return nil
}

func (cli *commandLine) clearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "delete all data, keeping only the admin password and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			if err := cli.store.ClearAll(commandContext(cmd)); err != nil {
				return err
			}
			cli.printf("all data cleared\n")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func (cli *commandLine) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "export users|logs",
		Short:     "export users or logs as CSV",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"users", "logs"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			var err error
			switch kind := args[0]; kind {
			case "users":
				err = cli.store.ExportUsersCSV(commandContext(cmd), &buf)
			default:
				err = cli.store.ExportLogsCSV(commandContext(cmd), &buf)
			}
			if err != nil {
				return err
			}
			if output == "" {
				output = school.ExportFilename(args[0], nowFunc())
			}
			return cli.writeOutput(output, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file ("-" for stdout; defaults to <kind>-<date>.csv)`)
	return cmd
}

func (cli *commandLine) writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := io.Copy(cli.out, bytes.NewReader(data))
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, "writing output")
	}
	cli.printf("written to %s\n", path)
	return nil
}
