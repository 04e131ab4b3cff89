package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/client/client"
	"github.com/dmitrijs2005/mediagate/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const onlineCheckInterval = 3 * time.Second

// commandClient is the part of client.GRPCClient the CLI uses.
type commandClient interface {
	Execute(ctx context.Context, line string) (string, error)
	Ping(ctx context.Context) error
	CallerID() string
	Close() error
}

type App struct {
	config *config.Config
	client commandClient

	mu   sync.Mutex
	mode Mode
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := client.NewCommandClient(c.ServerEndpointAddr, c.CallerID, []byte(c.ServiceSecret), c.CallerTokenValidity)
	if err != nil {
		return nil, err
	}

	return &App{config: c, client: apiClient}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == "" {
		return a.client.CallerID()
	}
	return a.client.CallerID() + " " + string(a.mode)
}

func (a *App) Execute(ctx context.Context, line string) (string, error) {
	return a.client.Execute(ctx, line)
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	log.Println("mediagate operator CLI (type 'help' for commands, 'exit' to quit)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(ctx, time.Second)
			err := a.client.Ping(ctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
