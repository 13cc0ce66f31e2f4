// Package planner implements the scheduling core: region
// clustering, single-day placement, and the week-level orchestration that
// ties fixed and flexible appointments together under a weekly budget.
package planner

import (
	"sort"

	"github.com/golang/geo/s2"

	"github.com/dimanh55/tourenplaner-backend-sub001/internal/domain"
)

// plannerEarthRadiusKm mirrors internal/geo's earthRadiusKm; kept local so
// planner doesn't need to import geo just for one constant.
const plannerEarthRadiusKm = 6371.0

// haversine computes great-circle distance in kilometers using
// golang/geo/s2's LatLng distance rather than a hand-rolled trig formula.
func haversine(a, b domain.GeoPoint) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * plannerEarthRadiusKm
}

// Region is one of the five fixed geographic clusters flexible appointments
// are biased toward.
type Region string

const (
	RegionNord  Region = "Nord"
	RegionOst   Region = "Ost"
	RegionWest  Region = "West"
	RegionSued  Region = "Süd"
	RegionMitte Region = "Mitte"
)

// regionOrder is declaration order, used as the tie-break when two
// centroids are equidistant from an appointment.
var regionOrder = []Region{RegionNord, RegionOst, RegionWest, RegionSued, RegionMitte}

// regionCentroids are fixed reference points for each region, chosen as the
// largest city within it.
var regionCentroids = map[Region]domain.GeoPoint{
	RegionNord:  {Lat: 53.5511, Lng: 9.9937},   // Hamburg
	RegionOst:   {Lat: 52.5200, Lng: 13.4050},  // Berlin
	RegionWest:  {Lat: 50.9375, Lng: 6.9603},   // Köln
	RegionSued:  {Lat: 48.1351, Lng: 11.5820},  // München
	RegionMitte: {Lat: 50.1109, Lng: 8.6821},   // Frankfurt am Main
}

// Clustered is the result of RegionClusterer: flexible appointments bucketed
// by region, fixed appointments kept separate, and a traversal order for
// the regions.
type Clustered struct {
	ByRegion   map[Region][]domain.Appointment
	Fixed      []domain.Appointment
	RegionPlan []Region
}

// RegionClusterer partitions flexible appointments among the
// five fixed regional centroids and orders the regions by distance from
// home base.
type RegionClusterer struct {
	homeBase domain.GeoPoint
}

// NewRegionClusterer constructs a clusterer anchored at homeBase.
func NewRegionClusterer(homeBase domain.GeoPoint) *RegionClusterer {
	return &RegionClusterer{homeBase: homeBase}
}

// Cluster assigns every flexible appointment in points to its
// nearest-centroid region, separates fixed appointments into their own
// bucket, and computes the region traversal order.
func (c *RegionClusterer) Cluster(appointments []domain.Appointment, points map[string]domain.GeoPoint) Clustered {
	result := Clustered{
		ByRegion: make(map[Region][]domain.Appointment, len(regionOrder)),
	}

	for _, a := range appointments {
		if a.IsFixed {
			result.Fixed = append(result.Fixed, a)
			continue
		}
		point, ok := points[a.ID]
		if !ok {
			point = c.homeBase
		}
		region := nearestRegion(point)
		result.ByRegion[region] = append(result.ByRegion[region], a)
	}

	result.RegionPlan = c.traversalOrder()
	return result
}

// nearestRegion returns the region whose centroid has minimum great-circle
// distance to p, tie-broken by declaration order.
func nearestRegion(p domain.GeoPoint) Region {
	best := regionOrder[0]
	bestDist := haversine(p, regionCentroids[best])
	for _, r := range regionOrder[1:] {
		d := haversine(p, regionCentroids[r])
		if d < bestDist {
			bestDist = d
			best = r
		}
	}
	return best
}

// traversalOrder returns the regions sorted ascending by great-circle
// distance from home base.
func (c *RegionClusterer) traversalOrder() []Region {
	ordered := make([]Region, len(regionOrder))
	copy(ordered, regionOrder)
	sort.SliceStable(ordered, func(i, j int) bool {
		return haversine(c.homeBase, regionCentroids[ordered[i]]) < haversine(c.homeBase, regionCentroids[ordered[j]])
	})
	return ordered
}
