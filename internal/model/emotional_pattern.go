package model

import (
	"time"

	"analysis-service/internal/scoring"

	"gorm.io/gorm"
)

// Narrative polarities.
const (
	PolarityPain     = "dor"
	PolarityResource = "recurso"
)

// LifeAreas lists the life areas a pattern narrative covers.
var LifeAreas = []string{"relacionamentos", "trabalho", "dinheiro"}

// EmotionalPattern is one row of the static narrative lookup: pattern x
// life area x polarity -> description. Seeded at startup, never user-owned.
type EmotionalPattern struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Pattern     string    `json:"pattern" gorm:"type:varchar(16);uniqueIndex:idx_pattern_area_polarity"`
	Area        string    `json:"area" gorm:"type:varchar(32);uniqueIndex:idx_pattern_area_polarity"`
	Polarity    string    `json:"polarity" gorm:"type:varchar(16);uniqueIndex:idx_pattern_area_polarity"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

// seedDescriptions holds the narrative texts keyed by pattern, area, polarity.
var seedDescriptions = map[scoring.Pattern]map[string]map[string]string{
	scoring.Criativo: {
		"relacionamentos": {
			PolarityPain:     "Medo de rejeição leva ao isolamento e à dificuldade de confiar no outro.",
			PolarityResource: "Sensibilidade profunda que cria vínculos intensos e autênticos quando há segurança.",
		},
		"trabalho": {
			PolarityPain:     "Sensação de não pertencer ao grupo e fuga para o mundo das ideias.",
			PolarityResource: "Imaginação fora do comum, capaz de enxergar soluções que ninguém mais vê.",
		},
		"dinheiro": {
			PolarityPain:     "Desconexão com o mundo material e dificuldade de cobrar pelo próprio valor.",
			PolarityResource: "Capacidade de gerar valor a partir de ideias originais e caminhos não óbvios.",
		},
	},
	scoring.Conectivo: {
		"relacionamentos": {
			PolarityPain:     "Medo do abandono gera apego excessivo e dependência do outro.",
			PolarityResource: "Presença acolhedora que nutre e sustenta relações duradouras.",
		},
		"trabalho": {
			PolarityPain:     "Dificuldade de agir sozinho e necessidade constante de aprovação.",
			PolarityResource: "Talento natural para cooperação, escuta e construção de equipes.",
		},
		"dinheiro": {
			PolarityPain:     "Sensação de escassez e de nunca receber o suficiente.",
			PolarityResource: "Constrói redes de troca generosas que retornam em abundância.",
		},
	},
	scoring.Forte: {
		"relacionamentos": {
			PolarityPain:     "Medo de trair e ser traído; entrega-se demais e se anula na relação.",
			PolarityResource: "Lealdade e doçura que fazem o outro se sentir seguro e cuidado.",
		},
		"trabalho": {
			PolarityPain:     "Carrega mais peso do que deveria e não sabe dizer não.",
			PolarityResource: "Resistência e constância; sustenta o que os outros abandonam no meio.",
		},
		"dinheiro": {
			PolarityPain:     "Prende-se à segurança e suporta situações ruins por medo de perder o pouco que tem.",
			PolarityResource: "Acumula com paciência e constrói bases materiais sólidas.",
		},
	},
	scoring.Lider: {
		"relacionamentos": {
			PolarityPain:     "Medo de ser controlado; precisa mandar na relação e não se permite vulnerabilidade.",
			PolarityResource: "Protege quem ama e inspira confiança pela firmeza.",
		},
		"trabalho": {
			PolarityPain:     "Centraliza tudo e desconfia da capacidade dos outros.",
			PolarityResource: "Visão de conjunto e coragem para assumir a frente e decidir.",
		},
		"dinheiro": {
			PolarityPain:     "Usa o dinheiro como instrumento de poder e controle.",
			PolarityResource: "Ambição estruturada que constrói patrimônio e abre caminhos para os seus.",
		},
	},
	scoring.Competitivo: {
		"relacionamentos": {
			PolarityPain:     "Transforma a relação em disputa e não admite perder nem ceder.",
			PolarityResource: "Charme e vitalidade que contagiam e movem o par para frente.",
		},
		"trabalho": {
			PolarityPain:     "Promete além do que entrega e atropela processos para vencer.",
			PolarityResource: "Energia de realização: transforma metas em conquistas rápidas.",
		},
		"dinheiro": {
			PolarityPain:     "Gasta para impressionar e mede o próprio valor pelo que exibe.",
			PolarityResource: "Faro para oportunidades e ousadia para multiplicar ganhos.",
		},
	},
}

// SeedEmotionalPatterns writes the static narrative lookup, skipping rows
// that already exist. Safe to run on every startup.
func SeedEmotionalPatterns(db *gorm.DB) error {
	for pattern, areas := range seedDescriptions {
		for area, polarities := range areas {
			for polarity, description := range polarities {
				row := EmotionalPattern{
					Pattern:     string(pattern),
					Area:        area,
					Polarity:    polarity,
					Description: description,
				}
				err := db.Where(EmotionalPattern{
					Pattern:  row.Pattern,
					Area:     row.Area,
					Polarity: row.Polarity,
				}).FirstOrCreate(&row).Error
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}
