package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goMarketd/internal/rpc"
	"github.com/LeJamon/goMarketd/internal/rpc/rpc_types"
)

// rpcCmd runs a method against the local database
var rpcCmd = &cobra.Command{
	Use:   "rpc <method> [params-json]",
	Short: "Execute an RPC method locally",
	Long: `Execute an RPC method by calling the same handlers used by the server,
as an admin, directly against the configured storage. The daemon must not be
running on the same storage path.

Example:
  marketd rpc create_bucket '{"sender":"buyer","funds":{"coins":[{"denom":"ujuno","amount":"100"}]}}'`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return listMethods(cmd.OutOrStdout())
		}
		var params json.RawMessage
		if len(args) == 2 {
			params = json.RawMessage(args[1])
			if !json.Valid(params) {
				return fmt.Errorf("params are not valid JSON")
			}
		}
		return executeMethod(cmd.Context(), cmd.OutOrStdout(), args[0], params)
	},
}

func init() {
	rootCmd.AddCommand(rpcCmd)
}

func listMethods(out io.Writer) error {
	server := rpc.NewServer(&rpc_types.ServiceContainer{}, rpc.Options{Logger: logger})
	fmt.Fprintln(out, "Available methods:")
	fmt.Fprintln(out, "  "+strings.Join(server.Methods(), "\n  "))
	return nil
}

// executeMethod opens the node, runs one method and prints its result.
func executeMethod(ctx context.Context, out io.Writer, method string, params json.RawMessage) error {
	if ctx == nil {
		ctx = context.Background()
	}
	n, err := openNode(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer n.Close()

	runCtx, cancel := context.WithCancel(ctx)
	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error { return n.runRecorder(gCtx) })

	result, rpcErr := invoke(ctx, n, method, params)
	// stop the recorder so queued sales reach the history before Close
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	if rpcErr != nil {
		return fmt.Errorf("RPC error [%d] %s: %s", rpcErr.Code, rpcErr.ErrorString, rpcErr.Message)
	}
	return printResult(out, result)
}

func invoke(ctx context.Context, n *node, method string, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	server := rpc.NewServer(n.services(), rpc.Options{Logger: logger})
	rpcCtx := &rpc_types.RpcContext{
		Context:    ctx,
		Role:       rpc_types.RoleAdmin,
		ApiVersion: rpc_types.DefaultApiVersion,
		IsAdmin:    true,
		ClientIP:   "127.0.0.1", // Local CLI
		RequestID:  uuid.NewString(),
	}
	return server.Execute(method, params, rpcCtx)
}

func printResult(out io.Writer, result interface{}) error {
	if result == nil {
		return nil
	}
	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(pretty))
	return nil
}
