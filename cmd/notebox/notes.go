package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebox"
)

var (
	noteTitle string
	noteBody  string
	listJSON  bool
)

func printNote(w io.Writer, n notebox.Note) {
	fmt.Fprintf(w, "%s - %s\n", n.ID, n.Title)
}

func printList(w io.Writer, list []notebox.Note, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(w, "(no notes)")
		return nil
	}
	for _, n := range list {
		printNote(w, n)
	}
	return nil
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		scope, err := requireScope(app)
		if err != nil {
			return err
		}

		n, err := app.Notes.Create(cmd.Context(), scope, notebox.Draft{Title: noteTitle, Body: noteBody})
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), n.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		scope, err := requireScope(app)
		if err != nil {
			return err
		}

		list, err := app.Notes.List(cmd.Context(), scope)
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}
		return printList(cmd.OutOrStdout(), list, listJSON)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		scope, err := requireScope(app)
		if err != nil {
			return err
		}

		n, err := app.Notes.Get(cmd.Context(), scope, args[0])
		if err != nil {
			return fmt.Errorf("failed to read note: %w", err)
		}
		if listJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(n)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n\n%s\n", n.Title, n.Body)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a note's title or body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		scope, err := requireScope(app)
		if err != nil {
			return err
		}

		n, err := app.Notes.Get(cmd.Context(), scope, args[0])
		if err != nil {
			return fmt.Errorf("failed to read note: %w", err)
		}
		d := notebox.Draft{Title: n.Title, Body: n.Body}
		if cmd.Flags().Changed("title") {
			d.Title = noteTitle
		}
		if cmd.Flags().Changed("body") {
			d.Body = noteBody
		}

		if err := app.Notes.Update(cmd.Context(), scope, n.ID, d); err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Note updated!")
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		scope, err := requireScope(app)
		if err != nil {
			return err
		}

		if err := app.Notes.Delete(cmd.Context(), scope, args[0]); err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note %s deleted.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd, listCmd, showCmd, editCmd, rmCmd)

	addCmd.Flags().StringVar(&noteTitle, "title", "", "Note title")
	addCmd.Flags().StringVar(&noteBody, "body", "", "Note body")
	editCmd.Flags().StringVar(&noteTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&noteBody, "body", "", "New body")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	showCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
