package trainings

// Exercicio is an entry of the exercise library.
type Exercicio struct {
	ID          int
	Nome        string
	Grupo       string
	GrupoKey    string
	Equipamento string
	EquipKey    string
	Icon        string
}

type Option struct {
	Key   string
	Label string
}

var MuscleGroups = []Option{
	{"peito", "Peito"},
	{"costas", "Costas"},
	{"ombros", "Ombros"},
	{"bracos", "Braços"},
	{"pernas", "Pernas"},
	{"core", "Core"},
}

var Equipment = []Option{
	{"barra", "Barra"},
	{"halteres", "Halteres"},
	{"maquinas", "Máquinas"},
	{"peso-corporal", "Peso Corporal"},
}

var library = []Exercicio{
	{ID: 1, Nome: "Supino Reto", Grupo: "Peito", GrupoKey: "peito", Equipamento: "Barra", EquipKey: "barra", Icon: "fitness_center"},
	{ID: 2, Nome: "Agachamento", Grupo: "Pernas", GrupoKey: "pernas", Equipamento: "Peso Corporal", EquipKey: "peso-corporal", Icon: "sports_gymnastics"},
	{ID: 3, Nome: "Desenvolvimento", Grupo: "Ombros", GrupoKey: "ombros", Equipamento: "Halteres", EquipKey: "halteres", Icon: "sports_martial_arts"},
}

// Library returns the exercises matching the optional group and equipment keys.
func Library(grupo, equipamento string) []Exercicio {
	out := make([]Exercicio, 0, len(library))
	for _, e := range library {
		if grupo != "" && e.GrupoKey != grupo {
			continue
		}
		if equipamento != "" && e.EquipKey != equipamento {
			continue
		}
		out = append(out, e)
	}
	return out
}
