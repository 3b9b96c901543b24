package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ytakagi/excelquiz/internal/store"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the admin roster",
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered admins",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		admins, err := st.AdminRepo().List(context.Background())
		if err != nil {
			return fmt.Errorf("list admins: %w", err)
		}
		if len(admins) == 0 {
			fmt.Println("No admins registered. The admin console is open to everyone until the first admin is added.")
			return nil
		}

		fmt.Printf("%-5s  %-32s  %s\n", "ID", "Email", "Name")
		fmt.Println(strings.Repeat("─", 60))
		for _, a := range admins {
			fmt.Printf("%-5d  %-32s  %s\n", a.ID, a.Email, a.DisplayName)
		}
		return nil
	},
}

var adminAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Register an admin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.AdminRepo().Insert(context.Background(), args[0], name); err != nil {
			return fmt.Errorf("add admin: %w", err)
		}
		fmt.Println("Added", args[0])
		return nil
	},
}

var adminRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Change an admin's display name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.AdminRepo().UpdateDisplayName(context.Background(), id, args[1]); err != nil {
			return fmt.Errorf("rename admin: %w", err)
		}
		fmt.Println("Renamed admin", id)
		return nil
	},
}

var adminRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one ID")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.AdminRepo().Delete(context.Background(), id); err != nil {
			if errors.Is(err, store.ErrLastAdmin) {
				return fmt.Errorf("refusing to remove the last admin; add another admin first")
			}
			return fmt.Errorf("remove admin: %w", err)
		}
		fmt.Println("Removed admin", id)
		return nil
	},
}

func init() {
	adminAddCmd.Flags().String("name", "", "Display name for the new admin")

	adminCmd.AddCommand(adminListCmd)
	adminCmd.AddCommand(adminAddCmd)
	adminCmd.AddCommand(adminRenameCmd)
	adminCmd.AddCommand(adminRemoveCmd)
}
