package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/voicetasker/voicetasker/internal/client/api"
	"github.com/voicetasker/voicetasker/internal/client/config"
	"github.com/voicetasker/voicetasker/internal/client/identity"
	"github.com/voicetasker/voicetasker/internal/client/localdb"
	"github.com/voicetasker/voicetasker/internal/client/recorder"
	"github.com/voicetasker/voicetasker/internal/client/syncer"
	"github.com/voicetasker/voicetasker/internal/common"
)

const cliUserAgent = "voicetasker-cli"

type App struct {
	config   *config.Config
	client   api.Client
	sync     *syncer.Syncer
	recorder *recorder.Recorder
	ownerID  string
	admin    bool
	reader   *bufio.Reader
	db       *sql.DB
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	// A broken local database degrades to the guest sentinel instead of
	// failing startup; the server then refuses writes but the UI still works.
	provider := identity.NewProvider(nil)
	var db *sql.DB
	if c.DatabaseDSN != "" {
		repos, err := localdb.InitDatabase(ctx, c.DatabaseDSN)
		if err != nil {
			log.Printf("error initializing local database: %s", err.Error())
		} else {
			provider = identity.NewProvider(repos.Metadata)
			db = repos.DB
		}
	}

	ownerID, err := provider.GetOrCreate(ctx)
	if err != nil {
		log.Printf("error resolving guest identity: %s", err.Error())
		ownerID = common.GuestSentinelID
	}

	apiClient, err := api.NewHTTPClient(c.ServerBaseURL)
	if err != nil {
		return nil, err
	}

	return &App{
		config:   c,
		client:   apiClient,
		sync:     syncer.New(apiClient),
		recorder: recorder.New(ctx, recorder.NewFileSource(c.AudioSourcePath)),
		ownerID:  ownerID,
		reader:   bufio.NewReader(os.Stdin),
		db:       db,
	}, nil
}

func (a *App) isAdmin() bool {
	return a.admin
}

func (a *App) Run(ctx context.Context) {
	defer a.close()

	a.reportVisit(ctx)

	if a.ownerID != common.GuestSentinelID {
		if err := a.sync.Attach(ctx, a.ownerID); err != nil {
			log.Printf("error attaching log feed: %s", err.Error())
		}
	} else {
		log.Println("no local storage available; log entries cannot be saved")
	}

	log.Println("Welcome to VoiceTasker CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) close() {
	a.sync.Detach()
	if err := a.client.Close(); err != nil {
		log.Printf("error closing api client: %s", err.Error())
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
