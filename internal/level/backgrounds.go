package level

// Backgrounds lists the background scenes a level may reference.
var Backgrounds = []string{
	"NightForest",
	"MountainLake",
	"CloudyMountains",
	"NightAquaForest",
	"MistyForest",
	"QuackCity",
	"QuackCityNight",
	"BlueNebula",
	"RedNebula",
	"RGNebula",
	"Saturn",
	"ShootingStar",
	"CandyCloudKingdom",
	"SaharaDesert",
	"BalmoralMountains",
	"DesolateMountains",
	"TundraDawn",
	"CrystalDesert",
	"CrystalValley",
	"DragonForest",
	"FourKingsForest",
	"IceNebula",
	"NorthernLight",
	"PurpleNebula",
	"Sphinx",
	"SnowOwl",
}

var knownBackgrounds = func() map[string]bool {
	m := make(map[string]bool, len(Backgrounds))
	for _, b := range Backgrounds {
		m[b] = true
	}
	return m
}()

// IsKnownBackground reports whether name is a known background scene.
func IsKnownBackground(name string) bool {
	return knownBackgrounds[name]
}
