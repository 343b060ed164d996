package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"parking-facility/internal/parking"
)

// FacilityCollector exports a facility's live occupancy to Prometheus. The
// values are read at scrape time.
type FacilityCollector struct {
	source func() *parking.Facility

	available *prometheus.Desc
	capacity  *prometheus.Desc
	active    *prometheus.Desc
	rate      *prometheus.Desc
}

// NewFacilityCollector reads from whatever facility source returns. A nil
// facility yields no samples.
func NewFacilityCollector(source func() *parking.Facility) *FacilityCollector {
	return &FacilityCollector{
		source: source,
		available: prometheus.NewDesc(
			"parking_facility_available_spots",
			"Free spots per size class.",
			[]string{"size"}, nil,
		),
		capacity: prometheus.NewDesc(
			"parking_facility_capacity_spots",
			"Configured spots per size class.",
			[]string{"size"}, nil,
		),
		active: prometheus.NewDesc(
			"parking_facility_active_tickets",
			"Vehicles currently parked.",
			nil, nil,
		),
		rate: prometheus.NewDesc(
			"parking_facility_hourly_rate",
			"Hourly rate charged on exit.",
			nil, nil,
		),
	}
}

func (c *FacilityCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.available
	ch <- c.capacity
	ch <- c.active
	ch <- c.rate
}

func (c *FacilityCollector) Collect(ch chan<- prometheus.Metric) {
	facility := c.source()
	if facility == nil {
		return
	}

	available := facility.Availability()
	capacity := facility.Capacity()
	for _, size := range parking.SizeClasses {
		ch <- prometheus.MustNewConstMetric(c.available, prometheus.GaugeValue, float64(available[size]), size.String())
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(capacity[size]), size.String())
	}

	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(len(facility.ActiveTickets())))
	ch <- prometheus.MustNewConstMetric(c.rate, prometheus.GaugeValue, facility.HourlyRate())
}
