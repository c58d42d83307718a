package coach

// IntensityPrescription holds the load parameters for one exercise slot.
// Tempo is eccentric-pause-concentric-pause; "X" means explosive.
type IntensityPrescription struct {
	Reps        Range  `json:"reps"`
	RIR         Range  `json:"rir"`
	RestSeconds Range  `json:"rest_seconds"`
	Tempo       string `json:"tempo"`
	Note        string `json:"note"`
}

// Prescribe returns the intensity parameters for a goal and exercise category.
// Pairs without a dedicated rule fall back to the maintenance defaults.
func Prescribe(goal Goal, category Category) IntensityPrescription {
	switch goal {
	case GoalStrength:
		if category == CategoryCompoundHeavy {
			return IntensityPrescription{
				Reps:        Range{3, 5},
				RIR:         Range{1, 3},
				RestSeconds: Range{180, 300},
				Tempo:       "1-0-X-0",
				Note:        "Max force output. Do not grind reps.",
			}
		}
		return IntensityPrescription{
			Reps:        Range{6, 10},
			RIR:         Range{1, 2},
			RestSeconds: Range{120, 180},
			Tempo:       "2-0-1-0",
			Note:        "Accessory work to build a hypertrophy base.",
		}

	case GoalHypertrophy, GoalRecomposition:
		if category.IsCompound() {
			return IntensityPrescription{
				Reps:        Range{6, 10},
				RIR:         Range{1, 2},
				RestSeconds: Range{90, 150},
				Tempo:       "2-0-1-0",
				Note:        "Mechanical tension focus. Control the eccentric.",
			}
		}
		if category == CategoryIsolation || category == CategoryBodyweight {
			return IntensityPrescription{
				Reps:        Range{10, 15},
				RIR:         Range{0, 1},
				RestSeconds: Range{60, 90},
				Tempo:       "2-1-1-0",
				Note:        "Metabolic stress and pump. Squeeze at the peak.",
			}
		}

	case GoalFatLoss:
		reps := Range{12, 20}
		if category.IsCompound() {
			reps = Range{8, 12}
		}
		return IntensityPrescription{
			Reps:        reps,
			RIR:         Range{0, 2},
			RestSeconds: Range{45, 75},
			Tempo:       "2-0-1-0",
			Note:        "High density training. Keep your heart rate up.",
		}
	}

	return IntensityPrescription{
		Reps:        Range{8, 12},
		RIR:         Range{2, 3},
		RestSeconds: Range{60, 120},
		Tempo:       "2-0-1-0",
		Note:        "Standard maintenance work.",
	}
}
