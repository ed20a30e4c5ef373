package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/todo-agent/internal/adapters/driving/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the task list and the assistant over HTTP.

Endpoints:
  GET    /               banner
  GET    /health         liveness
  POST   /agent          {"input": "..."} -> {"output": "..."}
  GET    /tasks          list tasks
  POST   /tasks          add a task
  POST   /tasks/upsert   update by title or add
  GET    /tasks/{id}     get a task
  PATCH  /tasks/{id}     update fields
  DELETE /tasks/{id}     delete a task

The listen address comes from --addr, TODO_HTTP_ADDR or http.addr in
config.toml.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", httpapi.DefaultAddr, "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	tasks, err := requireTasks()
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(
		&httpapi.Ports{Tasks: tasks, Agent: agentService},
		httpapi.Config{AgentRPS: settings.AgentRPS},
	)
	if err != nil {
		return err
	}

	watchPrompts(cmd.Context())

	cmd.Printf("HTTP API listening on %s\n", settings.HTTPAddr)
	return server.Run(cmd.Context(), settings.HTTPAddr)
}
