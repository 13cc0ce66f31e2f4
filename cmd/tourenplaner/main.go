// Command tourenplaner runs one weekly planning pass over a JSON
// appointment file, or inspects/clears the geocoding and distance caches.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/config"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/storage"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/storage/postgres"
	"github.com/dimanh55/tourenplaner-backend-sub001/internal/storage/sqlite"
	"github.com/dimanh55/tourenplaner-backend-sub001/pkg/logger"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgMagenta, color.Bold)
)

var (
	configFile string
	profile    string
	noColor    bool
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "tourenplaner",
	Short: "Tourenplaner – Wochenplanung für Außendienstmitarbeiter",
	Long: `Tourenplaner plant eine 5-Tage-Woche aus einer Liste von Terminen:
Adressauflösung, Routing zwischen Terminen und Übernachtungsentscheidungen
bei weiten Strecken.

VERWENDUNG:
  tourenplaner plan --input termine.json       # Woche planen und anzeigen
  tourenplaner cache stats                     # Cache-Statistiken anzeigen
  tourenplaner cache clear                      # Cache leeren`,
}

func main() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	// --no-color is only known once cobra has parsed the flags.
	cobra.OnInitialize(func() {
		if noColor {
			color.NoColor = true
		}
	})

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Konfigurationsdatei (wird nicht ausgewertet; die Konfiguration kommt aus Umgebungsvariablen)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "strict", "Planungsprofil: strict (40h/10h) oder flex (50h/14h)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "farbige Ausgabe deaktivieren")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Ausgabe als JSON statt Tabelle")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(cacheCmd)

	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "Fehler: %v\n", err)
		os.Exit(1)
	}
}

func planningConfig() (config.PlanningConfig, error) {
	switch profile {
	case "strict":
		return config.Strict40h10h(), nil
	case "flex":
		return config.Flex50h14h(), nil
	default:
		return config.PlanningConfig{}, fmt.Errorf("unbekanntes Profil %q (strict oder flex)", profile)
	}
}

func openCacheStore(ctx context.Context, svc config.ServiceConfig, log logger.Logger) (storage.CacheStore, error) {
	switch svc.Cache.Backend {
	case "postgres":
		db, err := postgres.Open(ctx, svc.Cache.PostgresDSN, log)
		if err != nil {
			return nil, fmt.Errorf("postgres cache öffnen: %w", err)
		}
		return postgres.NewStore(db), nil
	default:
		db, err := sqlite.Open(sqlite.DefaultConnectionConfig(svc.Cache.SQLitePath), log)
		if err != nil {
			return nil, fmt.Errorf("sqlite cache öffnen: %w", err)
		}
		return sqlite.NewStore(db), nil
	}
}
