package vehicles

import (
	"fmt"

	"github.com/ChristopherRabotin/amd"
	kitlog "github.com/go-kit/log"
)

// CruiseMission is the 500 nmi sea level cruise of the P2006T at 140 kts, propellers at 2700 rpm.
func CruiseMission(an map[string]*amd.Analyses, settings amd.SolverSettings, logger kitlog.Logger) (*amd.Mission, error) {
	cruise, ok := an[ConfigCruise]
	if !ok {
		return nil, fmt.Errorf("no analyses for configuration %s", ConfigCruise)
	}
	mission := amd.NewMission("the_mission", amd.Airport{Altitude: amd.MustBase(0, "ft")}, settings, logger)
	mission.Append(&amd.Cruise{
		SegmentBase: amd.SegmentBase{Name: "cruise", Analysis: cruise, RPM: rpm(2700)},
		Altitude:    amd.Float64(amd.MustBase(0, "ft")),
		AirSpeed:    amd.MustBase(140, "kts"),
		Distance:    amd.MustBase(500, "nmi"),
	})
	return mission, nil
}

// FullMission climbs to 2 km, cruises 300 nmi and descends back to the airport.
func FullMission(an map[string]*amd.Analyses, settings amd.SolverSettings, logger kitlog.Logger) (*amd.Mission, error) {
	for _, tag := range []string{ConfigCruise, ConfigLanding} {
		if _, ok := an[tag]; !ok {
			return nil, fmt.Errorf("no analyses for configuration %s", tag)
		}
	}
	mission := amd.NewMission("full_mission", amd.Airport{}, settings, logger)
	mission.Append(
		&amd.Climb{
			SegmentBase:   amd.SegmentBase{Name: "climb", Analysis: an[ConfigCruise], RPM: rpm(2700)},
			AltitudeStart: amd.Float64(0),
			AltitudeEnd:   2000,
			AirSpeed:      60,
			ClimbRate:     2,
		},
		&amd.Cruise{
			SegmentBase: amd.SegmentBase{Name: "cruise", Analysis: an[ConfigCruise], RPM: rpm(2700)},
			AirSpeed:    amd.MustBase(140, "kts"),
			Distance:    amd.MustBase(300, "nmi"),
		},
		&amd.Descent{
			SegmentBase: amd.SegmentBase{Name: "descent", Analysis: an[ConfigLanding], RPM: rpm(2400)},
			AltitudeEnd: 0,
			AirSpeed:    45,
			DescentRate: 3,
		},
	)
	return mission, nil
}
