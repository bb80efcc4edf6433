// geochat is a terminal chat client for the ReforestAI agent server. It
// opens a session and forwards each typed line as a user message, printing
// the assistant reply and any map artifacts the tools produced.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"reforestai-mcp-server/internal/chat"
)

type clientConfig struct {
	ServerURL string `mapstructure:"server_url"`
	AppName   string `mapstructure:"app_name"`
}

var rootCmd = &cobra.Command{
	Use:   "geochat",
	Short: "Chat with the ReforestAI geospatial agent",
	Long: `Interactive chat against an agent server hosting the ReforestAI app.

Each line you type is sent as one message. The assistant reply is printed
along with the paths of any maps rendered during the turn. Type "exit" or
press Ctrl-D to quit.`,
	RunE: runChat,
}

func init() {
	rootCmd.Flags().String("server", "http://localhost:8000", "agent server base URL")
	rootCmd.Flags().String("app", "reforestai-agent", "agent application name")

	viper.SetDefault("server_url", "http://localhost:8000")
	viper.SetDefault("app_name", "reforestai-agent")
	viper.SetEnvPrefix("GEOCHAT")
	viper.AutomaticEnv()

	_ = viper.BindPFlag("server_url", rootCmd.Flags().Lookup("server"))
	_ = viper.BindPFlag("app_name", rootCmd.Flags().Lookup("app"))
}

func runChat(cmd *cobra.Command, args []string) error {
	var cfg clientConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("error unmarshal config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client := chat.New(cfg.ServerURL, cfg.AppName)
	sessionID, err := client.CreateSession(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("session %s opened against %s\n", sessionID, cfg.ServerURL)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := client.Send(ctx, sessionID, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		if reply.Text != "" {
			fmt.Println(reply.Text)
		}
		for _, artifact := range reply.Artifacts {
			fmt.Printf("[artifact] %s\n", artifact)
		}
	}
	return scanner.Err()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("ERR: %v", err)
	}
}
