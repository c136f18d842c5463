package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "site-attendance",
	Short: "Construction-site attendance with automatic PPE checks",
	Long: `Site Attendance records who entered a construction site and whether they
wore their protective equipment. A gate kiosk sends a camera frame per worker,
a vision model (Gemini or OpenAI) checks helmet, vest, gloves and boots, and
the outcome is stored as an attendance record. Supervisors review daily
statistics and logs and can override statuses.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
