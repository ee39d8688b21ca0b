package jobs

import "github.com/kirillkom/quote-assistant/internal/core/domain"

// GenericKey is the fallback job type for descriptions no definition matches.
const GenericKey = "allmänt"

// Work types used as hourly-rate keys.
const (
	WorkPainter     = "målare"
	WorkCarpenter   = "snickare"
	WorkTiler       = "plattsättare"
	WorkPlumber     = "vvs"
	WorkElectrician = "elektriker"
	WorkRoofer      = "takläggare"
	WorkCleaner     = "städ"
	WorkGardener    = "trädgård"
	WorkMover       = "flytt"
	WorkGeneral     = "allmänt"
)

func builtinDefinitions() []domain.JobDefinition {
	return []domain.JobDefinition{
		{
			Key:           "målning",
			Title:         "Målning",
			Aliases:       []string{"painting", "måleri", "målningsarbete"},
			Keywords:      []string{"måla", "målning", "måleri", "spackla", "paint"},
			Category:      "painting",
			WorkType:      WorkPainter,
			RequiredInput: []string{domain.FieldArea},
			Questions: map[string]string{
				domain.FieldArea: "Hur många kvadratmeter väggyta ska målas?",
			},
			Validator: domain.ValidatorPainting,
			Deduction: domain.DeductionROT,
			Tasks: []domain.TaskFormula{
				{Name: "Förarbete", Description: "Spackling, slipning och maskering", WorkType: WorkPainter, Basis: domain.BasisArea, HoursPerUnit: 0.12, MinHours: 1},
				{Name: "Målning väggar", Description: "Två strykningar", WorkType: WorkPainter, Basis: domain.BasisArea, HoursPerUnit: 0.2, MinHours: 1},
				{Name: "Målning tak", Description: "Två strykningar", WorkType: WorkPainter, Basis: domain.BasisArea, HoursPerUnit: 0.15, Option: "tak"},
			},
			Materials: []domain.MaterialFormula{
				{Name: "Väggfärg", Unit: "liter", Basis: domain.BasisArea, QuantityPerUnit: 0.3, PricePerUnit: 80},
				{Name: "Spackel och maskering", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 1, PricePerUnit: 15},
				{Name: "Takfärg", Unit: "liter", Basis: domain.BasisArea, QuantityPerUnit: 0.2, PricePerUnit: 70, Option: "tak"},
			},
		},
		{
			Key:           "badrum",
			Title:         "Badrumsrenovering",
			Aliases:       []string{"bathroom", "badrumsrenovering", "våtrum"},
			Keywords:      []string{"badrum", "våtrum", "dusch", "bathroom"},
			Category:      "bathroom",
			WorkType:      WorkTiler,
			RequiredInput: []string{domain.FieldArea},
			Questions: map[string]string{
				domain.FieldArea: "Hur många kvadratmeter golvyta har badrummet?",
			},
			Validator: domain.ValidatorBathroom,
			Deduction: domain.DeductionROT,
			Tasks: []domain.TaskFormula{
				{Name: "Rivning", Description: "Rivning av befintligt ytskikt och inredning", WorkType: WorkCarpenter, Basis: domain.BasisArea, HoursPerUnit: 2.5, MinHours: 8},
				{Name: "Tätskikt", Description: "Godkänt tätskiktssystem för våtrum", WorkType: WorkTiler, Basis: domain.BasisArea, HoursPerUnit: 1.5, MinHours: 4},
				{Name: "Plattsättning", Description: "Kakel på vägg och klinker på golv", WorkType: WorkTiler, Basis: domain.BasisArea, HoursPerUnit: 4, MinHours: 12},
				{Name: "VVS-installation", WorkType: WorkPlumber, Basis: domain.BasisFixed, FixedHours: 16, DefaultRate: 750},
				{Name: "El-installation", WorkType: WorkElectrician, Basis: domain.BasisFixed, FixedHours: 6, DefaultRate: 700},
				{Name: "Golvvärme", Description: "Elektrisk golvvärme", WorkType: WorkElectrician, Basis: domain.BasisArea, HoursPerUnit: 1, FixedHours: 3, DefaultRate: 700, Option: "golvvärme", DefaultIncluded: true},
			},
			Materials: []domain.MaterialFormula{
				{Name: "Kakel och klinker", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 4, PricePerUnit: 350},
				{Name: "Tätskiktssystem", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 4, PricePerUnit: 180},
				{Name: "Sanitetsporslin och blandare", Unit: "st", Basis: domain.BasisFixed, FixedQuantity: 1, PricePerUnit: 15000},
				{Name: "Golvvärmematta", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 1, PricePerUnit: 600, Option: "golvvärme", DefaultIncluded: true},
			},
			Equipment: []domain.EquipmentFormula{
				{Name: "Container", Unit: domain.EquipmentPerDay, Basis: domain.BasisFixed, FixedUnits: 1, Price: 2500, IsRented: true},
			},
		},
		{
			Key:           "kök",
			Title:         "Köksrenovering",
			Aliases:       []string{"kitchen", "köksrenovering", "koksrenovering"},
			Keywords:      []string{"kök", "köks", "kitchen", "bänkskiva"},
			Category:      "kitchen",
			WorkType:      WorkCarpenter,
			RequiredInput: []string{domain.FieldArea},
			Questions: map[string]string{
				domain.FieldArea: "Hur många kvadratmeter är köket?",
			},
			Validator: domain.ValidatorKitchen,
			Deduction: domain.DeductionROT,
			Tasks: []domain.TaskFormula{
				{Name: "Rivning av befintligt kök", WorkType: WorkCarpenter, Basis: domain.BasisArea, HoursPerUnit: 1.5, MinHours: 6},
				{Name: "Montering av köksskåp", WorkType: WorkCarpenter, Basis: domain.BasisArea, HoursPerUnit: 3, MinHours: 8},
				{Name: "Bänkskiva", WorkType: WorkCarpenter, Basis: domain.BasisFixed, FixedHours: 4},
				{Name: "VVS-anslutning", WorkType: WorkPlumber, Basis: domain.BasisFixed, FixedHours: 8, DefaultRate: 750},
				{Name: "El-arbeten", WorkType: WorkElectrician, Basis: domain.BasisFixed, FixedHours: 8, DefaultRate: 700},
			},
			Materials: []domain.MaterialFormula{
				{Name: "Köksskåp och luckor", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 1, PricePerUnit: 4000},
				{Name: "Bänkskiva", Unit: "st", Basis: domain.BasisFixed, FixedQuantity: 1, PricePerUnit: 8000},
			},
			Equipment: []domain.EquipmentFormula{
				{Name: "Container", Unit: domain.EquipmentPerDay, Basis: domain.BasisFixed, FixedUnits: 1, Price: 2500, IsRented: true},
			},
		},
		{
			Key:           "golv",
			Title:         "Golvläggning",
			Aliases:       []string{"flooring", "golvläggning", "parkett"},
			Keywords:      []string{"golv", "parkett", "laminat", "floor"},
			Category:      "flooring",
			WorkType:      WorkCarpenter,
			RequiredInput: []string{domain.FieldArea},
			Validator:     domain.ValidatorGeneric,
			Deduction:     domain.DeductionROT,
			Tasks: []domain.TaskFormula{
				{Name: "Rivning av golv", WorkType: WorkCarpenter, Basis: domain.BasisArea, HoursPerUnit: 0.3, Option: "rivning", DefaultIncluded: true},
				{Name: "Golvläggning", WorkType: WorkCarpenter, Basis: domain.BasisArea, HoursPerUnit: 0.6, MinHours: 2},
				{Name: "Lister", WorkType: WorkCarpenter, Basis: domain.BasisArea, HoursPerUnit: 0.1, MinHours: 1},
			},
			Materials: []domain.MaterialFormula{
				{Name: "Golvmaterial", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 1.1, PricePerUnit: 300},
				{Name: "Underlag", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 1, PricePerUnit: 40},
			},
		},
		{
			Key:           "plattsättning",
			Title:         "Plattsättning",
			Aliases:       []string{"tiling", "kakel", "klinker"},
			Keywords:      []string{"plattsättning", "kakla", "kakel", "klinker", "tiling"},
			Category:      "tiling",
			WorkType:      WorkTiler,
			RequiredInput: []string{domain.FieldArea},
			Validator:     domain.ValidatorGeneric,
			Deduction:     domain.DeductionROT,
			Tasks: []domain.TaskFormula{
				{Name: "Underarbete", WorkType: WorkTiler, Basis: domain.BasisArea, HoursPerUnit: 0.5, MinHours: 2},
				{Name: "Plattsättning", WorkType: WorkTiler, Basis: domain.BasisArea, HoursPerUnit: 1.5, MinHours: 2},
				{Name: "Fogning", WorkType: WorkTiler, Basis: domain.BasisArea, HoursPerUnit: 0.3, MinHours: 1},
			},
			Materials: []domain.MaterialFormula{
				{Name: "Plattor", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 1.1, PricePerUnit: 400},
				{Name: "Fix och fog", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 1, PricePerUnit: 60},
			},
		},
		{
			Key:           "fönsterbyte",
			Title:         "Fönsterbyte",
			Aliases:       []string{"windows", "fönster", "window replacement"},
			Keywords:      []string{"fönsterbyte", "fönster", "window"},
			Category:      "windows",
			WorkType:      WorkCarpenter,
			RequiredInput: []string{domain.FieldQuantity},
			Questions: map[string]string{
				domain.FieldQuantity: "Hur många fönster ska bytas?",
			},
			Validator: domain.ValidatorGeneric,
			Deduction: domain.DeductionROT,
			Tasks: []domain.TaskFormula{
				{Name: "Demontering av fönster", WorkType: WorkCarpenter, Basis: domain.BasisQuantity, HoursPerUnit: 1.5},
				{Name: "Montering av fönster", WorkType: WorkCarpenter, Basis: domain.BasisQuantity, HoursPerUnit: 2.5},
				{Name: "Drevning och foder", WorkType: WorkCarpenter, Basis: domain.BasisQuantity, HoursPerUnit: 1.5},
			},
			Materials: []domain.MaterialFormula{
				{Name: "Fönster", Unit: "st", Basis: domain.BasisQuantity, QuantityPerUnit: 1, PricePerUnit: 7000},
				{Name: "Foder och drevmaterial", Unit: "st", Basis: domain.BasisQuantity, QuantityPerUnit: 1, PricePerUnit: 400},
			},
		},
		{
			Key:           "tak",
			Title:         "Takbyte",
			Aliases:       []string{"roof", "takbyte", "takläggning"},
			Keywords:      []string{"takbyte", "lägga om taket", "takpannor", "takplåt", "roof"},
			Category:      "roofing",
			WorkType:      WorkRoofer,
			RequiredInput: []string{domain.FieldArea},
			Questions: map[string]string{
				domain.FieldArea: "Hur många kvadratmeter takyta gäller det?",
			},
			Validator: domain.ValidatorGeneric,
			Deduction: domain.DeductionROT,
			Tasks: []domain.TaskFormula{
				{Name: "Rivning av tak", WorkType: WorkRoofer, Basis: domain.BasisArea, HoursPerUnit: 0.4, MinHours: 8},
				{Name: "Underlagstak", WorkType: WorkRoofer, Basis: domain.BasisArea, HoursPerUnit: 0.35, MinHours: 4},
				{Name: "Takläggning", WorkType: WorkRoofer, Basis: domain.BasisArea, HoursPerUnit: 0.55, MinHours: 8},
			},
			Materials: []domain.MaterialFormula{
				{Name: "Takpannor", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 1.05, PricePerUnit: 250},
				{Name: "Underlagspapp och läkt", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 1, PricePerUnit: 120},
			},
			Equipment: []domain.EquipmentFormula{
				{Name: "Byggställning", Unit: domain.EquipmentPerDay, Basis: domain.BasisFixed, FixedUnits: 7, Price: 700, IsRented: true},
			},
		},
		{
			Key:           "fasad",
			Title:         "Fasadmålning",
			Aliases:       []string{"facade", "fasadmålning", "fasadrenovering"},
			Keywords:      []string{"fasad", "facade", "utvändig målning"},
			Category:      "facade",
			WorkType:      WorkPainter,
			RequiredInput: []string{domain.FieldArea},
			Questions: map[string]string{
				domain.FieldArea: "Hur många kvadratmeter fasadyta gäller det?",
			},
			Validator: domain.ValidatorGeneric,
			Deduction: domain.DeductionROT,
			Tasks: []domain.TaskFormula{
				{Name: "Tvätt och skrapning", WorkType: WorkPainter, Basis: domain.BasisArea, HoursPerUnit: 0.25, MinHours: 4},
				{Name: "Fasadmålning", WorkType: WorkPainter, Basis: domain.BasisArea, HoursPerUnit: 0.35, MinHours: 4},
			},
			Materials: []domain.MaterialFormula{
				{Name: "Fasadfärg", Unit: "liter", Basis: domain.BasisArea, QuantityPerUnit: 0.35, PricePerUnit: 120},
			},
			Equipment: []domain.EquipmentFormula{
				{Name: "Byggställning", Unit: domain.EquipmentPerDay, Basis: domain.BasisFixed, FixedUnits: 7, Price: 700, IsRented: true},
			},
		},
		{
			Key:           "el",
			Title:         "Elarbete",
			Aliases:       []string{"electrical", "elarbete", "elinstallation"},
			Keywords:      []string{"elektriker", "eluttag", "elcentral", "elinstallation", "elarbete", "jordfelsbrytare", "uttag", "strömbrytare", "electrical"},
			Category:      "electrical",
			WorkType:      WorkElectrician,
			RequiredInput: []string{domain.FieldQuantity},
			Questions: map[string]string{
				domain.FieldQuantity: "Hur många uttag eller elpunkter gäller det?",
			},
			Validator: domain.ValidatorGeneric,
			Deduction: domain.DeductionROT,
			Tasks: []domain.TaskFormula{
				{Name: "Elinstallation", WorkType: WorkElectrician, Basis: domain.BasisQuantity, HoursPerUnit: 1.5, FixedHours: 1, DefaultRate: 700},
				{Name: "Provning och dokumentation", WorkType: WorkElectrician, Basis: domain.BasisFixed, FixedHours: 1, DefaultRate: 700},
			},
			Materials: []domain.MaterialFormula{
				{Name: "Elmaterial", Unit: "st", Basis: domain.BasisQuantity, QuantityPerUnit: 1, PricePerUnit: 350},
			},
		},
		{
			Key:           "vvs",
			Title:         "VVS-arbete",
			Aliases:       []string{"plumbing", "rörarbete", "rörmokare"},
			Keywords:      []string{"vvs", "rör", "blandare", "toalett", "avlopp", "plumbing"},
			Category:      "plumbing",
			WorkType:      WorkPlumber,
			RequiredInput: []string{domain.FieldQuantity},
			Questions: map[string]string{
				domain.FieldQuantity: "Hur många enheter (blandare, toaletter, anslutningar) gäller det?",
			},
			Validator: domain.ValidatorGeneric,
			Deduction: domain.DeductionROT,
			Tasks: []domain.TaskFormula{
				{Name: "VVS-montering", WorkType: WorkPlumber, Basis: domain.BasisQuantity, HoursPerUnit: 2.5, FixedHours: 1, DefaultRate: 750},
				{Name: "Täthetskontroll", WorkType: WorkPlumber, Basis: domain.BasisFixed, FixedHours: 1, DefaultRate: 750},
			},
			Materials: []domain.MaterialFormula{
				{Name: "VVS-material", Unit: "st", Basis: domain.BasisQuantity, QuantityPerUnit: 1, PricePerUnit: 1200},
			},
		},
		{
			Key:           "rivning",
			Title:         "Rivning",
			Aliases:       []string{"demolition", "rivningsarbete"},
			Keywords:      []string{"riva", "rivning", "demolition"},
			Category:      "demolition",
			WorkType:      WorkCarpenter,
			RequiredInput: []string{domain.FieldArea},
			Validator:     domain.ValidatorGeneric,
			Deduction:     domain.DeductionROT,
			Tasks: []domain.TaskFormula{
				{Name: "Rivning", WorkType: WorkCarpenter, Basis: domain.BasisArea, HoursPerUnit: 0.8, MinHours: 6},
				{Name: "Bortforsling och städning", WorkType: WorkCarpenter, Basis: domain.BasisArea, HoursPerUnit: 0.2, MinHours: 2},
			},
			Equipment: []domain.EquipmentFormula{
				{Name: "Container", Unit: domain.EquipmentPerDay, Basis: domain.BasisFixed, FixedUnits: 1, Price: 2500, IsRented: true},
			},
		},
		{
			Key:           "snickeri",
			Title:         "Snickeriarbete",
			Aliases:       []string{"carpentry", "snickare", "snickeriarbete"},
			Keywords:      []string{"snickeri", "snickare", "bygga", "altan", "trall", "carpentry"},
			Category:      "carpentry",
			WorkType:      WorkCarpenter,
			RequiredInput: []string{domain.FieldArea},
			Validator:     domain.ValidatorGeneric,
			Deduction:     domain.DeductionROT,
			Tasks: []domain.TaskFormula{
				{Name: "Stomme och bärlinor", WorkType: WorkCarpenter, Basis: domain.BasisArea, HoursPerUnit: 0.6, MinHours: 4},
				{Name: "Beklädnad", WorkType: WorkCarpenter, Basis: domain.BasisArea, HoursPerUnit: 0.5, MinHours: 2},
			},
			Materials: []domain.MaterialFormula{
				{Name: "Virke", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 1.1, PricePerUnit: 450},
				{Name: "Skruv och beslag", Unit: "kvm", Basis: domain.BasisArea, QuantityPerUnit: 1, PricePerUnit: 40},
			},
		},
		{
			Key:           "trädgård",
			Title:         "Trädgårdsarbete",
			Aliases:       []string{"garden", "trädgårdsarbete", "gardening"},
			Keywords:      []string{"trädgård", "gräsklippning", "häck", "ogräs", "beskär", "rabatt", "garden"},
			Category:      "garden",
			WorkType:      WorkGardener,
			RequiredInput: []string{domain.FieldArea},
			Validator:     domain.ValidatorGeneric,
			Deduction:     domain.DeductionRUT,
			Tasks: []domain.TaskFormula{
				{Name: "Trädgårdsarbete", WorkType: WorkGardener, Basis: domain.BasisArea, HoursPerUnit: 0.1, MinHours: 2},
			},
		},
		{
			Key:           "städning",
			Title:         "Städning",
			Aliases:       []string{"cleaning", "storstädning", "flyttstädning"},
			Keywords:      []string{"städ", "storstäd", "flyttstäd", "fönsterputs", "cleaning"},
			Category:      "cleaning",
			WorkType:      WorkCleaner,
			RequiredInput: []string{domain.FieldArea},
			Questions: map[string]string{
				domain.FieldArea: "Hur stor är bostaden i kvadratmeter?",
			},
			Validator: domain.ValidatorGeneric,
			Deduction: domain.DeductionRUT,
			Tasks: []domain.TaskFormula{
				{Name: "Städning", WorkType: WorkCleaner, Basis: domain.BasisArea, HoursPerUnit: 0.08, MinHours: 3},
			},
			Materials: []domain.MaterialFormula{
				{Name: "Städmaterial", Unit: "st", Basis: domain.BasisFixed, FixedQuantity: 1, PricePerUnit: 200},
			},
		},
		{
			Key:           "flytt",
			Title:         "Flytthjälp",
			Aliases:       []string{"moving", "flytthjälp", "flyttning"},
			Keywords:      []string{"flytt", "flytta", "bärhjälp", "moving"},
			Category:      "moving",
			WorkType:      WorkMover,
			RequiredInput: []string{domain.FieldRooms},
			Questions: map[string]string{
				domain.FieldRooms: "Hur många rum ska flyttas?",
			},
			Validator: domain.ValidatorGeneric,
			Deduction: domain.DeductionRUT,
			Tasks: []domain.TaskFormula{
				{Name: "Packning och bärning", WorkType: WorkMover, Basis: domain.BasisRooms, HoursPerUnit: 3, FixedHours: 2},
			},
			Equipment: []domain.EquipmentFormula{
				{Name: "Flyttbil", Unit: domain.EquipmentPerHour, Basis: domain.BasisRooms, UnitsPerUnit: 1, FixedUnits: 1, Price: 350, IsRented: true},
			},
		},
		{
			Key:       GenericKey,
			Title:     "Hantverksarbete",
			Aliases:   []string{"generic", "general", "övrigt"},
			Category:  "general",
			WorkType:  WorkGeneral,
			Validator: domain.ValidatorGeneric,
			Tasks: []domain.TaskFormula{
				{Name: "Arbete", WorkType: WorkGeneral, Basis: domain.BasisFixed, FixedHours: 8},
			},
		},
	}
}
