package model

// Equipment slot indices of the appearance block.
const (
	SlotHat = iota
	SlotCape
	SlotAmulet
	SlotWeapon
	SlotChest
	SlotShield
	SlotArms
	SlotLegs
	SlotHead
	SlotHands
	SlotFeet
	SlotBeard

	BodySlots = 12
)

// BodyColours is the number of recolourable body parts.
const BodyColours = 5

// Appearance animation indices.
const (
	AnimStand = iota
	AnimStandTurn
	AnimWalk
	AnimTurn180
	AnimTurn90CW
	AnimTurn90CCW
	AnimRun

	AppearanceAnims = 7
)

// Gender values.
const (
	GenderMale   = 0
	GenderFemale = 1
)

// KitSlot encodes a body kit for an appearance slot.
func KitSlot(kit int) int { return 0x100 + kit }

// ItemSlot encodes a worn item for an appearance slot.
func ItemSlot(item int) int { return 0x200 + item }

// Appearance: внешний вид игрока, как его видят другие клиенты.
// Слот со значением 0 пуст.
type Appearance struct {
	Gender      int
	HeadIcon    int
	Slots       [BodySlots]int
	Colours     [BodyColours]int
	Anims       [AppearanceAnims]int
	CombatLevel int
	SkillLevel  int
}

// DefaultAppearance returns the look of a freshly created male character.
func DefaultAppearance() Appearance {
	a := Appearance{
		Gender:      GenderMale,
		Colours:     [BodyColours]int{7, 8, 9, 5, 0},
		Anims:       [AppearanceAnims]int{0x328, 0x337, 0x333, 0x334, 0x335, 0x336, 0x338},
		CombatLevel: 3,
	}
	a.Slots[SlotChest] = KitSlot(18)
	a.Slots[SlotArms] = KitSlot(26)
	a.Slots[SlotLegs] = KitSlot(36)
	a.Slots[SlotHead] = KitSlot(0)
	a.Slots[SlotHands] = KitSlot(33)
	a.Slots[SlotFeet] = KitSlot(42)
	a.Slots[SlotBeard] = KitSlot(10)
	return a
}
