package cmd

import (
	"github.com/markusressel/epfa/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST api to adjust G-code sent over HTTP",
	Long: `Starts an HTTP server which accepts G-code on POST /adjust/
and returns the adjusted G-code in the response body.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()
		loadConfig()

		return internal.RunServer()
	},
}

func init() {
	serveCmd.Flags().String("host", "localhost", "Host to listen on")
	serveCmd.Flags().Int("port", 9001, "Port to listen on")
	if err := viper.BindPFlag("api.host", serveCmd.Flags().Lookup("host")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("api.port", serveCmd.Flags().Lookup("port")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(serveCmd)
}
