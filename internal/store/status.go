package store

import (
	"fmt"
	"slices"

	"github.com/huangsam/leadtime/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintMessageStatus prints message store status information.
func PrintMessageStatus(status schema.MessageStoreStatus) {
	fmt.Printf("Message Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Messages: %d\n", status.TotalMessages)
	if status.TotalMessages > 0 {
		fmt.Printf("Products: %d\n", status.TotalProducts)
		fmt.Printf("Oldest Cycle: %s\n", status.OldestStartTime.Format(schema.CycleLayout))
		fmt.Printf("Latest Cycle: %s\n", status.LatestStartTime.Format(schema.CycleLayout))
		fmt.Printf("Latest Arrival: %s\n", status.LatestArrival.Format(statusTimeLayout))
	}
	fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintRunStatus prints run store status information.
func PrintRunStatus(status schema.RunStoreStatus) {
	fmt.Printf("Run Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("Last Run ID: %d (%s)\n", status.LastRunID, status.LastRunUUID)
		fmt.Printf("Last Run: %s\n", status.LastRunTime.Format(statusTimeLayout))
		fmt.Printf("Oldest Run: %s\n", status.OldestRunTime.Format(statusTimeLayout))
		fmt.Printf("Total Bounds: %d\n", status.TotalBounds)
	}
	fmt.Println("Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
}
