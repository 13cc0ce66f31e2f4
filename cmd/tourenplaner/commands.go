package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/config"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/geo"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/planner"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/reporting"
	"github.com/dimanh55/tourenplaner-backend-sub001/pkg/logger"
)

// appointmentInput mirrors the external appointment record shape: the JSON
// the host system hands the planner, one entry per scheduled or proposed
// visit.
type appointmentInput struct {
	ID           string   `json:"id"`
	Customer     string   `json:"customer"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	Status       string   `json:"status"`
	Priority     string   `json:"priority"`
	PipelineDays int      `json:"pipelineDays"`
	IsFixed      bool     `json:"isFixed"`
	FixedDate    string   `json:"fixedDate,omitempty"` // "2006-01-02"
	FixedTime    string   `json:"fixedTime,omitempty"` // "HH:MM"
	Notes        string   `json:"notes,omitempty"`
}

func (in appointmentInput) toDomain() (domain.Appointment, error) {
	a := domain.Appointment{
		ID:           in.ID,
		Customer:     in.Customer,
		Address:      in.Address,
		Lat:          in.Lat,
		Lng:          in.Lng,
		Status:       domain.Status(in.Status),
		Priority:     domain.Priority(in.Priority),
		PipelineDays: in.PipelineDays,
		IsFixed:      in.IsFixed,
		FixedTime:    in.FixedTime,
		Notes:        in.Notes,
	}
	if in.FixedDate != "" {
		d, err := time.Parse("2006-01-02", in.FixedDate)
		if err != nil {
			return domain.Appointment{}, fmt.Errorf("appointment %s: invalid fixedDate %q: %w", in.ID, in.FixedDate, err)
		}
		a.FixedDate = d
	}
	return a, nil
}

var (
	inputPath string
	weekStart string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plant eine Woche aus einer JSON-Terminliste",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&inputPath, "input", "", "Pfad zur JSON-Terminliste (erforderlich)")
	planCmd.Flags().StringVar(&weekStart, "week", "", "Montag der Planungswoche, Format YYYY-MM-DD (Default: kommender Montag)")
	_ = planCmd.MarkFlagRequired("input")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("Terminliste lesen: %w", err)
	}

	var inputs []appointmentInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		return fmt.Errorf("Terminliste parsen: %w", err)
	}

	appointments := make([]domain.Appointment, 0, len(inputs))
	for _, in := range inputs {
		a, err := in.toDomain()
		if err != nil {
			return err
		}
		appointments = append(appointments, a)
	}

	monday, err := resolveWeekStart(weekStart)
	if err != nil {
		return err
	}

	planningCfg, err := planningConfig()
	if err != nil {
		return err
	}

	svcCfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("Umgebungskonfiguration laden: %w", err)
	}

	log := logger.NewDefaultLogger("tourenplaner", svcCfg.LogLevel)

	cache, err := openCacheStore(cmd.Context(), svcCfg, log)
	if err != nil {
		return err
	}
	defer cache.Close()

	// No external GeoProvider is wired here: the host system supplies one
	// via geo.Provider when it wants real geocoding/distance-matrix calls.
	// Without it, every address still resolves through the intelligent,
	// similar-city, postal, and country-centroid tiers.
	var provider geo.Provider

	geocoder := geo.NewGeocoder(provider, cache, planningCfg.MemoryCacheCap, log)
	distance := geo.NewDistanceOracle(provider, cache, planningCfg.MemoryCacheCap, log)

	wp := planner.NewWeekPlanner(planningCfg, geocoder, distance, log)
	week := wp.Plan(cmd.Context(), appointments, monday)

	formatter := reporting.NewFormatter()
	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(formatter.Render(week))
	}
	formatter.RenderCLI(week)
	return nil
}

// resolveWeekStart parses the --week flag, or defaults to the next Monday
// from the current date (today itself if today is already a Monday).
func resolveWeekStart(value string) (time.Time, error) {
	if value != "" {
		d, err := time.Parse("2006-01-02", value)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --week %q: %w", value, err)
		}
		return d, nil
	}
	now := time.Now().UTC()
	offset := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	monday := now.AddDate(0, 0, offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC), nil
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Verwaltet den Geocoding-/Distanz-Cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Zeigt Cache-Statistiken an",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Leert beide Cache-Tabellen",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	svcCfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("Umgebungskonfiguration laden: %w", err)
	}
	log := logger.NewDefaultLogger("tourenplaner", svcCfg.LogLevel)

	cache, err := openCacheStore(cmd.Context(), svcCfg, log)
	if err != nil {
		return err
	}
	defer cache.Close()

	stats, err := cache.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("Cache-Statistiken lesen: %w", err)
	}

	headerColor.Println("CACHE-STATISTIKEN")
	fmt.Printf("Geocoding-Einträge: %d\n", stats.GeocodingRows)
	fmt.Printf("Distanz-Einträge:   %d\n", stats.DistanceRows)
	if !stats.OldestEntry.IsZero() {
		fmt.Printf("Ältester Eintrag:   %s\n", stats.OldestEntry.Format(time.RFC3339))
		fmt.Printf("Neuester Eintrag:   %s\n", stats.NewestEntry.Format(time.RFC3339))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	svcCfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("Umgebungskonfiguration laden: %w", err)
	}
	log := logger.NewDefaultLogger("tourenplaner", svcCfg.LogLevel)

	cache, err := openCacheStore(cmd.Context(), svcCfg, log)
	if err != nil {
		return err
	}
	defer cache.Close()

	if err := cache.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("Cache leeren: %w", err)
	}
	successColor.Println("Cache geleert.")
	return nil
}
