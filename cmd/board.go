package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/pmx/internal/cli"
	"github.com/theirongolddev/pmx/internal/model"

	"github.com/spf13/cobra"
)

var flagTaskOwner string

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Kanban board operations",
}

var boardShowCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Show the three columns",
	Args:  cobra.ExactArgs(1),
	RunE:  runBoardShow,
}

var boardAddCmd = &cobra.Command{
	Use:   "add <project> <title>",
	Short: "Add a task to To Do",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runBoardAdd,
}

var boardMvCmd = &cobra.Command{
	Use:   "mv <project> <task> <column>",
	Short: "Move a task to todo, inprogress, or done",
	Args:  cobra.ExactArgs(3),
	RunE:  runBoardMv,
}

var boardRmCmd = &cobra.Command{
	Use:   "rm <project> <task>",
	Short: "Remove a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runBoardRm,
}

func init() {
	boardAddCmd.Flags().StringVar(&flagTaskOwner, "assign", "", "Task owner email")

	boardCmd.AddCommand(boardShowCmd, boardAddCmd, boardMvCmd, boardRmCmd)
	rootCmd.AddCommand(boardCmd)
}

func runBoardShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.openProject(ctx, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close(ctx) }()

	fmt.Println()
	fmt.Println(cli.RenderBoard(sess.Board.Snapshot(), 32))
	return nil
}

func runBoardAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.openProject(ctx, args[0])
	if err != nil {
		return err
	}
	t, ok := sess.AddTask(strings.Join(args[1:], " "), flagTaskOwner)
	if !ok {
		_ = sess.Close(ctx)
		return errors.New("task title is empty")
	}
	if err := commit(ctx, sess); err != nil {
		return err
	}
	fmt.Printf("  Added %s to %s: %s\n", t.ID, model.Todo.Label(), t.Title)
	return nil
}

func runBoardMv(cmd *cobra.Command, args []string) error {
	to, ok := model.ParseColumn(strings.ToLower(args[2]))
	if !ok {
		return fmt.Errorf("unknown column %q (todo, inprogress, done)", args[2])
	}
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.openProject(ctx, args[0])
	if err != nil {
		return err
	}
	id := model.TaskID(args[1])
	from, found := sess.Board.Find(id)
	if !found {
		_ = sess.Close(ctx)
		return fmt.Errorf("task %s not found", id)
	}
	if from == to {
		_ = sess.Close(ctx)
		fmt.Printf("  %s is already in %s\n", id, to.Label())
		return nil
	}
	sess.MoveTask(id, from, to)
	if err := commit(ctx, sess); err != nil {
		return err
	}
	fmt.Printf("  Moved %s: %s -> %s\n", id, from.Label(), to.Label())
	return nil
}

func runBoardRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.openProject(ctx, args[0])
	if err != nil {
		return err
	}
	id := model.TaskID(args[1])
	col, found := sess.Board.Find(id)
	if !found {
		_ = sess.Close(ctx)
		return fmt.Errorf("task %s not found", id)
	}
	sess.RemoveTask(id, col)
	if err := commit(ctx, sess); err != nil {
		return err
	}
	fmt.Printf("  Removed %s from %s\n", id, col.Label())
	return nil
}
