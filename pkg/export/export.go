// Package export renders generated schedules for external consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/helioplan/helioplan/core/scheduler"
)

// WriteJSON writes the full schedule result to w in JSON format.
func WriteJSON(w io.Writer, res scheduler.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes the per-slot plan to w in CSV format.
func WriteCSV(w io.Writer, slots []scheduler.Slot) error {
	cw := csv.NewWriter(w)
	header := []string{
		"time", "supply_kw", "load_kw",
		"battery_charge_kw", "battery_discharge_kw", "battery_soc",
		"grid_import_kw", "grid_export_kw", "generator_kw", "devices",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range slots {
		devices := ""
		for i, d := range s.Devices {
			if i > 0 {
				devices += ";"
			}
			devices += d.DeviceID
		}
		rec := []string{
			s.Time.Format(time.RFC3339),
			formatKW(s.SupplyKW),
			formatKW(s.LoadKW),
			formatKW(s.BatteryChargeKW),
			formatKW(s.BatteryDischargeKW),
			formatKW(s.BatterySoC),
			formatKW(s.GridImportKW),
			formatKW(s.GridExportKW),
			formatKW(s.GeneratorKW),
			devices,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatKW(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
