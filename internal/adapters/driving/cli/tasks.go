package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/services"
)

// now is the clock used to resolve relative due dates.
var now = time.Now

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Long: `Adds a task and prints its id.

The due date accepts ISO dates and forms such as "today", "tomorrow",
"7 october" or "07/10/2025".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all tasks",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a task",
	Long: `Updates only the fields given as flags. An empty --due or
--description clears the stored value.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

var findCmd = &cobra.Command{
	Use:   "find <title>",
	Short: "Find a task by title",
	Long: `Looks a task up by exact title, ignoring case and surrounding spaces.

With --fuzzy, a miss falls back to token similarity: the task whose
title shares the largest fraction of words with the query wins, if that
fraction reaches --threshold.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFind,
}

var upsertCmd = &cobra.Command{
	Use:   "upsert <title>",
	Short: "Update the task with a matching title, or add it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpsert,
}

func init() {
	addCmd.Flags().StringP("description", "d", "", "task description")
	addCmd.Flags().String("due", "", "due date")

	listCmd.Flags().Bool("json", false, "output tasks as JSON")

	updateCmd.Flags().String("title", "", "new title")
	updateCmd.Flags().StringP("description", "d", "", "new description")
	updateCmd.Flags().String("due", "", "new due date")
	updateCmd.Flags().Bool("completed", false, "mark completed (--completed=false to reopen)")

	findCmd.Flags().Bool("fuzzy", false, "fall back to fuzzy matching")
	findCmd.Flags().Float64("threshold", domain.DefaultFuzzyThreshold, "minimum fuzzy similarity (0-1)")

	upsertCmd.Flags().StringP("description", "d", "", "task description")
	upsertCmd.Flags().String("due", "", "due date")
	upsertCmd.Flags().Bool("completed", false, "mark completed")
	upsertCmd.Flags().Bool("no-fuzzy", false, "match exact titles only")

	rootCmd.AddCommand(addCmd, listCmd, updateCmd, deleteCmd, findCmd, upsertCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	tasks, err := requireTasks()
	if err != nil {
		return err
	}

	title := strings.Join(args, " ")
	description := optionalFlag(cmd, "description")
	due := dueFlag(cmd)

	id, err := tasks.Add(cmd.Context(), title, description, due)
	if err != nil {
		return err
	}
	cmd.Println(services.AddedMessage(id, due))
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	tasks, err := requireTasks()
	if err != nil {
		return err
	}

	list, err := tasks.List(cmd.Context())
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		if list == nil {
			list = []domain.Task{}
		}
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal tasks: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(domain.RenderTasks(list))
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	tasks, err := requireTasks()
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var patch domain.TaskPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		patch.Title = domain.Some(title)
	}
	if flags.Changed("description") {
		description, _ := flags.GetString("description")
		patch.Description = domain.Some(description)
	}
	if flags.Changed("due") {
		patch.DueDate = domain.Some("")
		if due := dueFlag(cmd); due != nil {
			patch.DueDate = domain.Some(*due)
		}
	}
	if flags.Changed("completed") {
		completed, _ := flags.GetBool("completed")
		patch.Completed = domain.Some(completed)
	}
	if patch.IsEmpty() {
		return fmt.Errorf("%w: nothing to update, pass at least one of --title, --description, --due, --completed",
			domain.ErrInvalidArgument)
	}

	updated, err := tasks.Update(cmd.Context(), id, patch)
	if err != nil {
		return err
	}
	if !updated {
		cmd.Println(services.MsgTaskNotChanged)
		return nil
	}
	cmd.Println(services.MsgTaskUpdated)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	tasks, err := requireTasks()
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	deleted, err := tasks.Delete(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !deleted {
		cmd.Println(services.MsgTaskNotFound)
		return nil
	}
	cmd.Println(services.MsgTaskDeleted)
	return nil
}

func runFind(cmd *cobra.Command, args []string) error {
	tasks, err := requireTasks()
	if err != nil {
		return err
	}

	fuzzy, _ := cmd.Flags().GetBool("fuzzy")
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	task, err := tasks.Find(cmd.Context(), strings.Join(args, " "), fuzzy, threshold)
	if err != nil {
		return err
	}
	if task == nil {
		cmd.Println(services.MsgTaskNotFound)
		return nil
	}
	cmd.Println(task.String())
	return nil
}

func runUpsert(cmd *cobra.Command, args []string) error {
	tasks, err := requireTasks()
	if err != nil {
		return err
	}

	in := domain.UpsertInput{
		Title:       strings.Join(args, " "),
		Description: optionalFlag(cmd, "description"),
		DueDate:     dueFlag(cmd),
	}
	if cmd.Flags().Changed("completed") {
		completed, _ := cmd.Flags().GetBool("completed")
		in.Completed = &completed
	}
	noFuzzy, _ := cmd.Flags().GetBool("no-fuzzy")
	in.UseFuzzy = !noFuzzy

	result, err := tasks.Upsert(cmd.Context(), in)
	if err != nil {
		return err
	}
	if result.Matched {
		cmd.Println(services.UpdatedMessage(result.ID, result.Previous))
		return nil
	}
	cmd.Println(services.AddedMessage(result.ID, in.DueDate))
	return nil
}

// optionalFlag returns the flag's value when it was given, nil otherwise.
func optionalFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// dueFlag returns the normalised --due value, nil when absent or blank.
func dueFlag(cmd *cobra.Command) *string {
	raw := optionalFlag(cmd, "due")
	if raw == nil {
		return nil
	}
	return services.NormalizeDueDate(*raw, now())
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: task id must be an integer, got %q", domain.ErrInvalidArgument, s)
	}
	return id, nil
}
