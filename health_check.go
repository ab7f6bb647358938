//go:build ignore

package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fenilmodi00/tender-backend/config"
	"github.com/fenilmodi00/tender-backend/database"
	"github.com/fenilmodi00/tender-backend/models"
	"github.com/fenilmodi00/tender-backend/services"
	"github.com/fenilmodi00/tender-backend/shared"
)

func main() {
	fmt.Printf("🏥 Tender Scraper Health Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	healthScore := 0
	totalTests := 3

	cfg := config.LoadConfig()
	unified := cfg.ToUnifiedConfiguration()
	ctx := context.Background()

	// Test 1: search page reachable
	fmt.Print("📡 Search page: ")
	client := shared.NewOptimizedHTTPClient(15*time.Second, 1)
	if request, err := http.NewRequestWithContext(ctx, http.MethodGet, unified.Browser.SearchURL, nil); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		shared.SetBrowserLikeHeaders(request, "text/html")
		if response, err := shared.ExecuteHTTPRequestWithRetry(client, request, 1); err != nil {
			fmt.Printf("❌ FAILED (%v)\n", err)
		} else {
			response.Body.Close()
			fmt.Println("✅ OK")
			healthScore++
		}
	}

	// Test 2: database
	fmt.Print("🗄️  Database: ")
	db, dialect, err := database.ConnectWithConfig(cfg.DatabaseURL, &unified.Database)
	if err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Println("✅ OK")
		healthScore++
		defer database.Close(db)
	}

	// Test 3: today's stored tenders
	fmt.Print("📊 Today's tenders: ")
	if db == nil {
		fmt.Println("❌ SKIPPED (no database)")
	} else {
		store := services.NewSQLTenderStore(db, dialect)
		today := models.NewTodayWindow(time.Now(), unified.Location()).String()
		if count, err := store.CountByPublishedDate(ctx, today); err != nil {
			fmt.Printf("❌ FAILED (%v)\n", err)
		} else {
			fmt.Printf("✅ OK (%d tenders for %s)\n", count, today)
			healthScore++
		}
	}

	// Overall health
	fmt.Println(strings.Repeat("-", 50))
	healthPercent := float64(healthScore) / float64(totalTests) * 100

	if healthScore == totalTests {
		fmt.Printf("🎉 SYSTEM HEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else if healthScore >= totalTests/2 {
		fmt.Printf("⚠️  SYSTEM DEGRADED: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else {
		fmt.Printf("❌ SYSTEM UNHEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	}

	fmt.Printf("⏰ Check completed at: %s\n", time.Now().Format("15:04:05"))
}
