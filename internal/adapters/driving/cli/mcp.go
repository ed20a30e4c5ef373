package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/todo-agent/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the task list to MCP clients",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run a Model Context Protocol server backed by the task database.

Without --port the server speaks JSON-RPC over stdio, which is what desktop
assistants expect when they launch the binary themselves:

  {
    "mcpServers": {
      "todo": { "command": "/path/to/todo", "args": ["mcp", "serve"] }
    }
  }

With --port it serves the streamable HTTP transport instead, for the MCP
Inspector or remote clients.`,
	Example: `  todo mcp serve
  todo mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

var mcpToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the MCP server exposes",
	Args:  cobra.NoArgs,
	RunE:  runMCPTools,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd, mcpToolsCmd)
	rootCmd.AddCommand(mcpCmd)
}

func newMCPServer() (*mcp.Server, error) {
	tasks, err := requireTasks()
	if err != nil {
		return nil, err
	}
	return mcp.NewServer(&mcp.Ports{Tasks: tasks})
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := newMCPServer()
	if err != nil {
		return err
	}
	watchPrompts(cmd.Context())

	if port <= 0 {
		return server.Run(cmd.Context())
	}
	addr := fmt.Sprintf(":%d", port)
	cmd.Printf("MCP server listening on http://localhost%s/\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}

func runMCPTools(cmd *cobra.Command, _ []string) error {
	server, err := newMCPServer()
	if err != nil {
		return err
	}
	for _, tool := range server.Tools() {
		cmd.Printf("%-12s %s\n", tool.Name, tool.Description)
	}
	return nil
}
