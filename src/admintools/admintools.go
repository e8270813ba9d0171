package admintools

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"git.biostar.network/biostar/biostar/src/biodata"
	"git.biostar.network/biostar/biostar/src/db"
	"git.biostar.network/biostar/biostar/src/logging"
	"git.biostar.network/biostar/biostar/src/models"
	"git.biostar.network/biostar/biostar/src/site"
	"github.com/spf13/cobra"
)

func init() {
	adminCommand := &cobra.Command{
		Use:   "admin",
		Short: "Miscellaneous admin commands",
	}
	site.SiteCommand.AddCommand(adminCommand)

	verifyCommand := &cobra.Command{
		Use:   "verifycounters",
		Short: "Recompute all denormalized counters and report drift",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			conn := db.NewConnPool()
			defer conn.Close()

			drifts, err := biodata.VerifyCounters(ctx, conn)
			if err != nil {
				panic(err)
			}
			if len(drifts) == 0 {
				fmt.Println("All counters check out.")
				return
			}
			for _, drift := range drifts {
				fmt.Println(drift)
			}
			os.Exit(1)
		},
	}
	adminCommand.AddCommand(verifyCommand)

	exportCommand := &cobra.Command{
		Use:   "export <filename>",
		Short: "Export all site content to a JSON snapshot",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a filename.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConnPool()
			defer conn.Close()

			file, err := os.Create(args[0])
			if err != nil {
				panic(err)
			}
			defer file.Close()

			err = biodata.ExportSnapshot(ctx, conn, file)
			if err != nil {
				panic(err)
			}
			logging.Info().Str("filename", args[0]).Msg("Exported snapshot")
		},
	}
	adminCommand.AddCommand(exportCommand)

	importCommand := &cobra.Command{
		Use:   "import <filename>",
		Short: "Import a JSON snapshot into an empty database",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a filename.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConnPool()
			defer conn.Close()

			file, err := os.Open(args[0])
			if err != nil {
				panic(err)
			}
			defer file.Close()

			err = biodata.ImportSnapshot(ctx, conn, file)
			if err != nil {
				panic(err)
			}

			// Imports bypass the apply protocol, so prove the books balance.
			drifts, err := biodata.VerifyCounters(ctx, conn)
			if err != nil {
				panic(err)
			}
			for _, drift := range drifts {
				logging.Warn().Str("counter", drift.String()).Msg("counter drift after import")
			}
			logging.Info().Str("filename", args[0]).Msg("Imported snapshot")
		},
	}
	adminCommand.AddCommand(importCommand)

	userCommand := &cobra.Command{
		Use:   "adduser <username> <email>",
		Short: "Create a user",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and an email address.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConnPool()
			defer conn.Close()

			user, err := biodata.CreateUserRecord(ctx, conn, &models.User{
				Username: args[0],
				Email:    args[1],
			})
			if err != nil {
				panic(err)
			}
			fmt.Printf("Created user %s (id %d)\n", user.Username, user.ID)
		},
	}
	adminCommand.AddCommand(userCommand)

	grantCommand := &cobra.Command{
		Use:   "grantbadge <badge id> <user id>",
		Short: "Award a badge to a user",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a badge id and a user id.\n\n")
				cmd.Usage()
				os.Exit(1)
			}
			badgeId, err := strconv.Atoi(args[0])
			if err != nil {
				panic(err)
			}
			userId, err := strconv.Atoi(args[1])
			if err != nil {
				panic(err)
			}

			ctx := context.Background()
			conn := db.NewConnPool()
			defer conn.Close()

			award, err := biodata.GrantAward(ctx, conn, badgeId, userId, time.Now())
			if err != nil {
				panic(err)
			}
			fmt.Printf("Granted award %d\n", award.ID)
		},
	}
	adminCommand.AddCommand(grantCommand)
}
