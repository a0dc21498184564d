package schedule

// EnergyPattern names a user's self-reported energy rhythm, used to bias
// break placement toward their low-energy stretches.
type EnergyPattern string

const (
	EnergyMorningPerson  EnergyPattern = "morning_person"
	EnergyAfternoonSlump EnergyPattern = "afternoon_slump"
	EnergyNightOwl       EnergyPattern = "night_owl"
	EnergyNormal         EnergyPattern = "normal"
)

var energySchedules = map[EnergyPattern][]int{
	EnergyMorningPerson:  {20, 40, 70, 100},
	EnergyAfternoonSlump: {30, 60, 90},
	EnergyNightOwl:       {35, 70, 105},
	EnergyNormal:         {25, 50, 75, 100},
}

// OptimizeForEnergyPattern returns the preset break offsets for a pattern,
// dropping any that would land at or past the end of the session. Unknown
// patterns use the normal preset.
func OptimizeForEnergyPattern(workMinutes int, pattern EnergyPattern) []int {
	base, ok := energySchedules[pattern]
	if !ok {
		base = energySchedules[EnergyNormal]
	}

	var offsets []int
	for _, offset := range base {
		if offset < workMinutes {
			offsets = append(offsets, offset)
		}
	}
	return offsets
}
