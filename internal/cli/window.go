package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// windowOverride is set by --window to act on a window other than the saved one
var windowOverride string

func newWindowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Login window and puzzle commands",
	}

	cmd.PersistentFlags().StringVar(&windowOverride, "window", "", "Window token (default: the saved window)")

	cmd.AddCommand(newWindowOpenCmd())
	cmd.AddCommand(newWindowShowCmd())
	cmd.AddCommand(newWindowSelectCmd())
	cmd.AddCommand(newWindowSwapCmd())
	cmd.AddCommand(newWindowReshuffleCmd())
	cmd.AddCommand(newWindowTileCmd())
	cmd.AddCommand(newWindowCloseCmd())

	return cmd
}

// currentWindow returns the window token commands should act on
func currentWindow() (string, error) {
	if windowOverride != "" {
		return windowOverride, nil
	}
	return cfg.Window()
}

func windowPath(token, suffix string) string {
	return fmt.Sprintf("/api/v1/windows/%s%s", token, suffix)
}

func parsePosition(arg string) (int, error) {
	pos, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q: must be 0-3", arg)
	}
	return pos, nil
}

func newWindowOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open a new login window",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Window

			if err := client.Post("/api/v1/windows", nil, &result); err != nil {
				return err
			}

			if err := cfg.SaveWindow(result.Token); err != nil {
				return fmt.Errorf("failed to save window: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newWindowShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the puzzle in the current window",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := currentWindow()
			if err != nil {
				return err
			}

			var result Window

			if err := client.Get(windowPath(token, ""), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newWindowSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <position>",
		Short: "Click a tile: mark it, or swap it with the marked tile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			token, err := currentWindow()
			if err != nil {
				return err
			}

			var result Window

			req := map[string]int{"position": pos}
			if err := client.Post(windowPath(token, "/select"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newWindowSwapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "swap <a> <b>",
		Short: "Swap the tiles at two positions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			b, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			token, err := currentWindow()
			if err != nil {
				return err
			}

			var result Window

			req := map[string]int{"a": a, "b": b}
			if err := client.Post(windowPath(token, "/swap"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newWindowReshuffleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reshuffle",
		Short: "Scramble the puzzle again",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := currentWindow()
			if err != nil {
				return err
			}

			var result Window

			if err := client.Post(windowPath(token, "/reshuffle"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newWindowTileCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "tile <position>",
		Short: "Download the tile image shown at a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			token, err := currentWindow()
			if err != nil {
				return err
			}

			data, err := client.GetRaw(windowPath(token, fmt.Sprintf("/tiles/%d", pos)), "image/png")
			if err != nil {
				return err
			}

			if outFile == "" {
				outFile = fmt.Sprintf("tile-%d.png", pos)
			}
			if err := os.WriteFile(outFile, data, 0644); err != nil {
				return fmt.Errorf("failed to write tile: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Saved tile at position %d to %s", pos, outFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&outFile, "out", "", "Output file (default: tile-<position>.png)")

	return cmd
}

func newWindowCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the current login window",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := currentWindow()
			if err != nil {
				return err
			}

			if err := client.Delete(windowPath(token, "")); err != nil {
				return err
			}

			if windowOverride == "" {
				if err := cfg.ClearWindow(); err != nil {
					return err
				}
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage("Window closed")
			return nil
		},
	}
}
