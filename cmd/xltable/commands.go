package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ukaji3/xltable-go/pkg/xltable"
	"github.com/ukaji3/xltable-go/pkg/xltable/models"
	"github.com/ukaji3/xltable-go/pkg/xltable/ooxml"
	"github.com/ukaji3/xltable-go/pkg/xltable/output"
	"github.com/ukaji3/xltable-go/pkg/xltable/stats"
)

func newDumpCmd(c *cli) *cobra.Command {
	var (
		outputPath    string
		pretty        bool
		sheet         string
		sheetsDir     string
		printAreasDir string
	)

	cmd := &cobra.Command{
		Use:   "dump <input.xlsx>",
		Short: "Output every worksheet as a JSON table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return xltable.With(args[0], c.options(false), func(wb *xltable.Workbook) error {
				var (
					jsonData []byte
					err      error
				)
				if sheet != "" {
					table, terr := wb.Table(sheet)
					if terr != nil {
						return terr
					}
					if table == nil {
						return fmt.Errorf("%w: %q", xltable.ErrSheetNotFound, sheet)
					}
					jsonData, err = output.TableToJSON(table, pretty)
				} else {
					ds, derr := wb.DataSet()
					if derr != nil {
						return fmt.Errorf("projection failed: %w", derr)
					}
					if ds == nil {
						ds = &models.DataSet{BookName: filepath.Base(args[0]), Tables: []*models.Table{}}
					}
					if sheetsDir != "" {
						if err := writeSheetFiles(ds, sheetsDir, pretty); err != nil {
							return fmt.Errorf("failed to write sheet files: %w", err)
						}
					}
					jsonData, err = output.ToJSON(ds, pretty)
				}
				if err != nil {
					return fmt.Errorf("serialization failed: %w", err)
				}

				if printAreasDir != "" {
					if err := writeViewFiles(wb, printAreasDir, pretty); err != nil {
						return fmt.Errorf("failed to write print area files: %w", err)
					}
				}

				if outputPath != "" {
					if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
						return fmt.Errorf("failed to write output: %w", err)
					}
				} else if sheetsDir == "" && printAreasDir == "" {
					fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Only output this sheet")
	cmd.Flags().StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	cmd.Flags().StringVar(&printAreasDir, "print-areas-dir", "", "Directory for per-print-area and per-table output files")
	return cmd
}

func writeSheetFiles(ds *models.DataSet, dir string, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, table := range ds.Tables {
		jsonData, err := output.TableToJSON(table, pretty)
		if err != nil {
			return err
		}

		filename := filepath.Join(dir, table.Name+".json")
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}

	return nil
}

func writeViewFiles(wb *xltable.Workbook, dir string, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, sheetName := range wb.SheetNames() {
		views, err := wb.Views(sheetName)
		if err != nil {
			return err
		}
		counts := make(map[string]int)
		for _, view := range views {
			jsonData, err := output.ViewToJSON(&view, pretty)
			if err != nil {
				return err
			}

			counts[view.Kind]++
			suffix := "area"
			if view.Kind == "table" {
				suffix = "table"
			}
			filename := filepath.Join(dir, fmt.Sprintf("%s_%s%d.json", sheetName, suffix, counts[view.Kind]))
			if err := os.WriteFile(filename, jsonData, 0644); err != nil {
				return err
			}
		}
	}

	return nil
}

func newGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <input.xlsx> <sheet> <cell>",
		Short: "Print the resolved value of one cell",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return xltable.With(args[0], c.options(false), func(wb *xltable.Workbook) error {
				value, ok, err := wb.CellValue(args[1], args[2])
				if err != nil {
					return err
				}
				if !ok {
					c.logger.Info().Str("sheet", args[1]).Str("cell", args[2]).Msg("no value")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	}
}

func newSetCmd(c *cli) *cobra.Command {
	var (
		cellType   string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "set <input.xlsx> <sheet> <cell> <value>",
		Short: "Write a value into one cell and save the file",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := ooxml.ParseCellType(cellType)
			if err != nil {
				return err
			}
			return xltable.With(args[0], c.options(true), func(wb *xltable.Workbook) error {
				if err := wb.SetCellValue(args[1], args[2], args[3], kind); err != nil {
					return err
				}
				if outputPath != "" {
					return wb.SaveAs(outputPath)
				}
				return wb.Save()
			})
		},
	}

	cmd.Flags().StringVarP(&cellType, "type", "t", "inline", "Cell type: inline, string, number, bool, date, shared, error or unset. The value is stored as given: bool takes 1 or 0, shared takes a shared string index")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to this file instead of saving in place")
	return cmd
}

func newDeleteSheetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-sheet <input.xlsx> <sheet>",
		Short: "Remove a worksheet and save the file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return xltable.With(args[0], c.options(true), func(wb *xltable.Workbook) error {
				if err := wb.DeleteSheet(args[1]); err != nil {
					return err
				}
				return wb.Save()
			})
		},
	}
}

func newDescribeCmd(c *cli) *cobra.Command {
	var (
		header bool
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "describe <input.xlsx> <sheet>",
		Short: "Summarise the numeric columns of a worksheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return xltable.With(args[0], c.options(false), func(wb *xltable.Workbook) error {
				table, err := wb.Table(args[1])
				if err != nil {
					return err
				}
				if table == nil {
					return fmt.Errorf("%w: %q", xltable.ErrSheetNotFound, args[1])
				}
				summary, err := stats.Describe(table, header)
				if err != nil {
					return err
				}
				jsonData, err := output.RecordsToJSON(summary, pretty)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&header, "header", true, "Treat the first row as column headers")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}
