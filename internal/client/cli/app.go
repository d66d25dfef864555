package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/enigma/internal/client/client"
	"github.com/dmitrijs2005/enigma/internal/client/config"
)

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewEnigmaAdminClient(c.ServerEndpointAddr, c.SecretKey, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

// Run executes args as a single command, or starts the prompt when args is
// empty. It returns the command error in one-shot mode.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.client.Close()

	if len(args) == 0 {
		runREPL(ctx, a, a.out, bufio.NewScanner(a.reader))
		return nil
	}
	return a.Execute(ctx, args)
}
