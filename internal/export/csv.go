package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sadopc/fleetwatch/internal/model"
)

// ToCSV writes one row per account with the daily counters and financial
// figures from the latest snapshot.
func ToCSV(fleet *model.Fleet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Phone", "Completed", "Total", "Pct", "Status", "Income", "Balance", "Withdrawal", "Points"}); err != nil {
		return err
	}

	for _, a := range fleet.Accounts {
		row := []string{
			a.PhoneDisplay,
			fmt.Sprintf("%d", a.Completed),
			fmt.Sprintf("%d", a.Total),
			fmt.Sprintf("%d", a.Pct),
			a.Status,
			fmt.Sprintf("%d", a.Income),
			fmt.Sprintf("%d", a.Balance),
			fmt.Sprintf("%d", a.Withdrawal),
			fmt.Sprintf("%d", a.Points),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
