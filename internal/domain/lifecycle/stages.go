package lifecycle

import "pet-companion-chat/internal/domain/trainers"

type StageDetail struct {
	Species string `json:"species"`
	Image   string `json:"image"`
}

var DefaultStageDetail = StageDetail{
	Species: "Companion",
	Image:   "images/pikachu.png",
}

var stageDetails = map[int]StageDetail{
	1: {Species: "Pichu", Image: "images/pichu.png"},
	2: {Species: "Pikachu", Image: "images/pikachu.png"},
	3: {Species: "Raichu", Image: "images/raichu.png"},
}

// StageDetailFor devuelve especie/imagen del stage; stages desconocidos caen en el default.
func StageDetailFor(stage int) StageDetail {
	if d, ok := stageDetails[stage]; ok {
		return d
	}
	return DefaultStageDetail
}

func SpeciesOf(p trainers.Pet) string {
	return StageDetailFor(p.Stage).Species
}
