package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/dJSON/lib/document"
	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/ValentinKolb/dJSON/rpc/transport"
	"github.com/ValentinKolb/dJSON/rpc/transport/goredis"
	"github.com/ValentinKolb/dJSON/rpc/transport/local"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds common connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds of the client"))

	key = "endpoint"
	cmd.PersistentFlags().String(key, "localhost:6379", WrapString("The address of the store the document module runs on"))

	key = "username"
	cmd.PersistentFlags().String(key, "", WrapString("The username to authenticate with (optional)"))

	key = "password"
	cmd.PersistentFlags().String(key, "", WrapString("The password to authenticate with (optional)"))

	key = "db"
	cmd.PersistentFlags().Int(key, 0, WrapString("The logical database to select"))

	key = "retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to retry a request"))

	key = "pool-size"
	cmd.PersistentFlags().Int(key, 4, WrapString("The size of the connection pool"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("djson")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		Endpoint:      viper.GetString("endpoint"),
		Username:      viper.GetString("username"),
		Password:      viper.GetString("password"),
		DB:            viper.GetInt("db"),
		TimeoutSecond: viper.GetInt("timeout"),
		RetryCount:    viper.GetInt("retries"),
		PoolSize:      viper.GetInt("pool-size"),
		LogLevel:      viper.GetString("log-level"),
	}
}

// GetCodec creates the codec used for all document values
func GetCodec() document.ICodec {
	return document.NewCodec()
}

// GetTransport creates transport based on configuration
func GetTransport() (transport.IModuleTransport, error) {
	switch viper.GetString("transport") {
	case "redis":
		return goredis.NewRedisClientTransport(), nil
	case "local":
		return local.NewLocalTransport(local.NewEngine()), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
