package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lkane/hearthwatch/internal/advisor"
	"github.com/lkane/hearthwatch/internal/api"
	"github.com/lkane/hearthwatch/internal/backup"
	"github.com/lkane/hearthwatch/internal/features"
	"github.com/lkane/hearthwatch/internal/inference"
	"github.com/lkane/hearthwatch/internal/models"
	"github.com/lkane/hearthwatch/internal/simulate"
	"github.com/lkane/hearthwatch/internal/store"
)

type Globals struct {
	DB           string  `help:"Path to the SQLite history database." default:"data/hearthwatch.db" env:"HEARTHWATCH_DB"`
	Model        string  `help:"Path to the exported ONNX regression model." default:"data/co2_model.onnx" env:"HEARTHWATCH_MODEL"`
	Timezone     string  `help:"IANA timezone for timestamps and clock features." default:"Europe/London" env:"HEARTHWATCH_TZ"`
	CO2Threshold float64 `name:"co2-threshold" help:"Predicted kg above which emissions count as high." default:"0.05" env:"HEARTHWATCH_CO2_THRESHOLD"`
}

var cli struct {
	Globals

	Serve    ServeCmd    `cmd:"" default:"withargs" help:"Run the dashboard server."`
	Once     OnceCmd     `cmd:"" help:"Run a single prediction from flag inputs and exit."`
	Simulate SimulateCmd `cmd:"" help:"Feed synthetic sensor readings through the pipeline."`
	Backup   BackupCmd   `cmd:"" help:"Export the history as CSV and upload it over FTP."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("hearthwatch"),
		kong.Description("Household energy emissions monitoring dashboard."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli.Globals); err != nil {
		log.Fatalf("%s: %v", ctx.Command(), err)
	}
}

// openStore opens the history database, applies pragmas and migrations, and
// loads the configured timezone.
func openStore(g *Globals) (*store.Store, *sql.DB, *time.Location, error) {
	db, err := sql.Open("sqlite", g.DB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		log.Printf("Warning: could not load timezone %s, using UTC: %v", g.Timezone, err)
		loc = time.UTC
	}

	st := store.New(db, loc)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}

	return st, db, loc, nil
}

type ServeCmd struct {
	Port    string        `help:"HTTP server port." default:"8080" env:"PORT"`
	Gap     time.Duration `help:"Chart gap threshold." default:"30m" env:"HEARTHWATCH_GAP"`
	Timeout time.Duration `help:"Per-request budget for inference and store writes." default:"10s"`
}

func (c *ServeCmd) Run(g *Globals) error {
	st, db, loc, err := openStore(g)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Println("database migrated")

	// No prediction capability without the model: loading is fatal here.
	model, err := inference.Load(g.Model)
	if err != nil {
		return err
	}
	defer model.Close()
	log.Printf("model loaded from %s", g.Model)

	// Narrative generation is optional - may not have an API key.
	var narrator *advisor.Narrator
	if n, err := advisor.NewNarrator(); err != nil {
		log.Printf("Narrative generation disabled: %v", err)
	} else {
		narrator = n
	}

	server := api.NewServer(st, model, narrator, api.Config{
		Port:         c.Port,
		CO2Threshold: g.CO2Threshold,
		GapThreshold: c.Gap,
		OpTimeout:    c.Timeout,
	}, loc)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

type OnceCmd struct {
	Temp     float64 `help:"Temperature in C." default:"15"`
	Humidity float64 `help:"Relative humidity percent." default:"60"`
	Rain     float64 `help:"Rainfall in mm." default:"0"`
	Kettle   float64 `help:"Kettle draw in watts." default:"0"`
	Fridge   float64 `help:"Fridge-freezer draw in watts." default:"60"`
	TV       float64 `help:"Television draw in watts." default:"45"`
	WM       float64 `help:"Washing machine draw in watts." default:"0"`
	MW       float64 `help:"Microwave draw in watts." default:"0"`
	HiFi     float64 `help:"Hi-Fi draw in watts." default:"10"`
	Save     bool    `help:"Append the prediction to the history."`
}

func (c *OnceCmd) Run(g *Globals) error {
	model, err := inference.Load(g.Model)
	if err != nil {
		return err
	}
	defer model.Close()

	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		loc = time.UTC
	}

	reading := models.Reading{
		AppliancePower: map[models.Appliance]float64{
			models.FridgeFreezer:    c.Fridge,
			models.WashingMachine:   c.WM,
			models.Dishwasher:       0,
			models.Television:       c.TV,
			models.Microwave:        c.MW,
			models.Toaster:          0,
			models.HiFi:             c.HiFi,
			models.Kettle:           c.Kettle,
			models.OvenExtractorFan: 0,
		},
		TempC:       c.Temp,
		HumidityPct: c.Humidity,
		RainMM:      c.Rain,
	}

	vector, err := features.Assemble(reading, time.Now().In(loc))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	co2, err := model.Predict(ctx, vector)
	if err != nil {
		return err
	}

	fmt.Printf("Predicted CO2: %.6f kg (next 15 mins)\n", co2)
	fmt.Println(advisor.Recommend(co2, reading.AppliancePower, g.CO2Threshold))

	if c.Save {
		st, db, _, err := openStore(g)
		if err != nil {
			return err
		}
		defer db.Close()

		rec, err := st.Append(ctx, co2, reading)
		if err != nil {
			return err
		}
		fmt.Printf("Saved at %s\n", rec.Timestamp.Format(time.RFC3339))
	}
	return nil
}

type SimulateCmd struct {
	Interval time.Duration `help:"Time between synthetic readings." default:"15m"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	st, db, loc, err := openStore(g)
	if err != nil {
		return err
	}
	defer db.Close()

	model, err := inference.Load(g.Model)
	if err != nil {
		return err
	}
	defer model.Close()

	sim := simulate.New(st, model, loc, c.Interval, g.CO2Threshold)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("simulating readings every %s", c.Interval)
	if err := sim.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type BackupCmd struct {
	Addr string `help:"FTP server address (host:port)." required:"" env:"HEARTHWATCH_FTP_ADDR"`
	User string `help:"FTP user." default:"anonymous" env:"HEARTHWATCH_FTP_USER"`
	Pass string `help:"FTP password." default:"anonymous" env:"HEARTHWATCH_FTP_PASS"`
	Dir  string `help:"Remote directory for exports." env:"HEARTHWATCH_FTP_DIR"`
}

func (c *BackupCmd) Run(g *Globals) error {
	st, db, loc, err := openStore(g)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	records, err := st.All(ctx)
	if err != nil {
		return err
	}

	uploader := backup.NewUploader(c.Addr, c.User, c.Pass, c.Dir)
	return uploader.Upload(records, time.Now().In(loc))
}
