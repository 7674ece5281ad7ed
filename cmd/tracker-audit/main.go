package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"hctracker/database"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "audit":
		handleAudit()
	case "list":
		handleList()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Tracker Audit - CLI utility for run history maintenance")
	fmt.Println()
	fmt.Println("Usage: tracker-audit <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  audit [--db=path]   Recount total_runs counters from the session journal")
	fmt.Println("  list  [--db=path]   List customers with stored run counters")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  tracker-audit audit --db=tracker.db")
	fmt.Println("  tracker-audit list")
}

func openDB(args []string) *database.DB {
	fs := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	dbPath := fs.String("db", "tracker.db", "путь к базе данных трекера")
	fs.Parse(args)

	db, err := database.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Ошибка открытия базы данных %s: %v", *dbPath, err)
	}
	return db
}

func handleAudit() {
	db := openDB(os.Args[2:])
	defer db.Close()

	ids, err := db.ListHistoryCustomerIDs()
	if err != nil {
		log.Fatalf("Ошибка чтения строк истории: %v", err)
	}

	corrected := 0
	for _, id := range ids {
		prev, current, err := db.RecountTotalRuns(id)
		if err != nil {
			log.Fatalf("Ошибка пересчета счетчика заказчика %d: %v", id, err)
		}
		if prev != current {
			corrected++
			fmt.Printf("customer %d: total_runs %d -> %d\n", id, prev, current)
		}
	}

	fmt.Printf("Проверено строк: %d, исправлено: %d\n", len(ids), corrected)
}

func handleList() {
	db := openDB(os.Args[2:])
	defer db.Close()

	customers, err := db.ListCustomers()
	if err != nil {
		log.Fatalf("Ошибка чтения заказчиков: %v", err)
	}

	if len(customers) == 0 {
		fmt.Println("Заказчики не найдены")
		return
	}

	for _, customer := range customers {
		row, err := db.GetHistoryRow(customer.ID)
		if err != nil {
			log.Fatalf("Ошибка чтения истории заказчика %d: %v", customer.ID, err)
		}
		fmt.Printf("%4d  %-30s %-20s runs=%d months=%d\n",
			customer.ID, customer.Name, customer.NetworkName, row.TotalRuns, len(row.Months))
	}
}
