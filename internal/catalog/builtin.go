package catalog

import (
	"fmt"
	"sync"
)

// Spec categories.
const (
	CategoryPerformance SpecCategory = "Performance"
	CategoryBattery     SpecCategory = "Battery"
	CategoryCharging    SpecCategory = "Charging"
	CategoryEfficiency  SpecCategory = "Efficiency"
	CategoryDimensions  SpecCategory = "Dimensions"
)

// Spec fields.
const (
	FieldHorsepower   SpecField = "Horsepower"
	FieldTorque       SpecField = "Torque"
	FieldAcceleration SpecField = "Acceleration"
	FieldTopSpeed     SpecField = "TopSpeed"
	FieldDriveType    SpecField = "DriveType"
	FieldMotorType    SpecField = "MotorType"

	FieldBatteryCapacity  SpecField = "BatteryCapacity"
	FieldRange            SpecField = "Range"
	FieldBatteryChemistry SpecField = "BatteryChemistry"
	FieldBatteryWarranty  SpecField = "BatteryWarranty"

	FieldAcChargingTime     SpecField = "AcChargingTime"
	FieldDcFastChargingTime SpecField = "DcFastChargingTime"
	FieldMaxChargingPower   SpecField = "MaxChargingPower"
	FieldChargingPortType   SpecField = "ChargingPortType"

	FieldEnergyConsumption   SpecField = "EnergyConsumption"
	FieldRegenerativeBraking SpecField = "RegenerativeBraking"
	FieldHeatPump            SpecField = "HeatPump"

	FieldLength          SpecField = "Length"
	FieldWidth           SpecField = "Width"
	FieldHeight          SpecField = "Height"
	FieldWheelbase       SpecField = "Wheelbase"
	FieldGroundClearance SpecField = "GroundClearance"
	FieldCurbWeight      SpecField = "CurbWeight"
	FieldCargoVolume     SpecField = "CargoVolume"
	FieldSeatingCapacity SpecField = "SeatingCapacity"
)

// Feature categories.
const (
	FeatureSafety        FeatureCategory = "Safety"
	FeatureConvenience   FeatureCategory = "Convenience"
	FeatureEntertainment FeatureCategory = "Entertainment"
	FeatureExterior      FeatureCategory = "Exterior"
	FeatureSeating       FeatureCategory = "Seating"
)

// Feature flags.
const (
	FlagAutomaticEmergencyBraking FeatureFlag = "AutomaticEmergencyBraking"
	FlagBackupCamera              FeatureFlag = "BackupCamera"
	FlagBlindSpotMonitoring       FeatureFlag = "BlindSpotMonitoring"
	FlagLaneKeepingAssist         FeatureFlag = "LaneKeepingAssist"
	FlagAdaptiveCruiseControl     FeatureFlag = "AdaptiveCruiseControl"
	FlagParkingSensors            FeatureFlag = "ParkingSensors"
	FlagSurroundViewCamera        FeatureFlag = "SurroundViewCamera"

	FlagKeylessEntry     FeatureFlag = "KeylessEntry"
	FlagPushButtonStart  FeatureFlag = "PushButtonStart"
	FlagPowerLiftgate    FeatureFlag = "PowerLiftgate"
	FlagWirelessCharging FeatureFlag = "WirelessCharging"
	FlagDualZoneClimate  FeatureFlag = "DualZoneClimate"
	FlagRemoteStart      FeatureFlag = "RemoteStart"

	FlagAppleCarPlay          FeatureFlag = "AppleCarPlay"
	FlagAndroidAuto           FeatureFlag = "AndroidAuto"
	FlagPremiumAudio          FeatureFlag = "PremiumAudio"
	FlagNavigationSystem      FeatureFlag = "NavigationSystem"
	FlagRearSeatEntertainment FeatureFlag = "RearSeatEntertainment"

	FlagLedHeadlights       FeatureFlag = "LedHeadlights"
	FlagPanoramicSunroof    FeatureFlag = "PanoramicSunroof"
	FlagPowerFoldingMirrors FeatureFlag = "PowerFoldingMirrors"
	FlagAlloyWheels         FeatureFlag = "AlloyWheels"
	FlagRoofRails           FeatureFlag = "RoofRails"

	FlagHeatedFrontSeats  FeatureFlag = "HeatedFrontSeats"
	FlagVentilatedSeats   FeatureFlag = "VentilatedSeats"
	FlagPowerDriverSeat   FeatureFlag = "PowerDriverSeat"
	FlagMemorySeats       FeatureFlag = "MemorySeats"
	FlagLeatherUpholstery FeatureFlag = "LeatherUpholstery"
	FlagThirdRowSeating   FeatureFlag = "ThirdRowSeating"
)

// Option tables for the label-mapped fields.
var (
	DriveTypeOptions = []Option{
		{Value: "FWD", Label: "Front-Wheel Drive"},
		{Value: "RWD", Label: "Rear-Wheel Drive"},
		{Value: "AWD", Label: "All-Wheel Drive"},
	}
	MotorTypeOptions = []Option{
		{Value: "PMSM", Label: "Permanent Magnet Synchronous"},
		{Value: "Induction", Label: "AC Induction"},
		{Value: "DualMotor", Label: "Dual Motor"},
		{Value: "TriMotor", Label: "Tri Motor"},
	}
	BatteryChemistryOptions = []Option{
		{Value: "LFP", Label: "Lithium Iron Phosphate (LFP)"},
		{Value: "NMC", Label: "Nickel Manganese Cobalt (NMC)"},
		{Value: "NCA", Label: "Nickel Cobalt Aluminum (NCA)"},
		{Value: "SolidState", Label: "Solid State"},
	}
	RegenerativeBrakingOptions = []Option{
		{Value: "Low", Label: "Low"},
		{Value: "Medium", Label: "Medium"},
		{Value: "High", Label: "High"},
		{Value: "OnePedal", Label: "One-Pedal Driving"},
	}
	ChargingPortTypeOptions = []Option{
		{Value: "CCS2", Label: "CCS Combo 2"},
		{Value: "CHAdeMO", Label: "CHAdeMO"},
		{Value: "Type2", Label: "Type 2 (Mennekes)"},
		{Value: "NACS", Label: "NACS"},
		{Value: "GBT", Label: "GB/T"},
	}
	HeatPumpOptions = []Option{
		{Value: "Yes", Label: "Equipped"},
		{Value: "No", Label: "Not equipped"},
	}
)

// builtinSpecs is the built-in spec schema in declaration order.
var builtinSpecs = []SpecCategoryDoc{
	// === Performance ===
	{Category: CategoryPerformance, Fields: []SpecFieldDef{
		{Name: FieldHorsepower, Unit: "hp", Type: FieldNumber},
		{Name: FieldTorque, Unit: "Nm", Type: FieldNumber},
		{Name: FieldAcceleration, Unit: "s", Type: FieldNumber, Label: "Acceleration (0-100 km/h)"},
		{Name: FieldTopSpeed, Unit: "km/h", Type: FieldNumber},
		{Name: FieldDriveType, Type: FieldText, Options: DriveTypeOptions},
		{Name: FieldMotorType, Type: FieldText, Options: MotorTypeOptions},
	}},

	// === Battery ===
	{Category: CategoryBattery, Fields: []SpecFieldDef{
		{Name: FieldBatteryCapacity, Unit: "kWh", Type: FieldNumber},
		{Name: FieldRange, Unit: "km", Type: FieldNumber},
		{Name: FieldBatteryChemistry, Type: FieldText, Options: BatteryChemistryOptions},
		{Name: FieldBatteryWarranty, Unit: "years", Type: FieldNumber},
	}},

	// === Charging ===
	{Category: CategoryCharging, Fields: []SpecFieldDef{
		{Name: FieldAcChargingTime, Unit: "h", Type: FieldNumber, Label: "AC Charging Time"},
		{Name: FieldDcFastChargingTime, Unit: "min", Type: FieldNumber, Label: "DC Fast Charging Time (10-80%)"},
		{Name: FieldMaxChargingPower, Unit: "kW", Type: FieldNumber},
		{Name: FieldChargingPortType, Type: FieldText, Options: ChargingPortTypeOptions},
	}},

	// === Efficiency ===
	{Category: CategoryEfficiency, Fields: []SpecFieldDef{
		{Name: FieldEnergyConsumption, Unit: "kWh/100km", Type: FieldNumber},
		{Name: FieldRegenerativeBraking, Type: FieldText, Label: "Regenerative Braking Capacity", Options: RegenerativeBrakingOptions},
		{Name: FieldHeatPump, Type: FieldText, Options: HeatPumpOptions},
	}},

	// === Dimensions ===
	{Category: CategoryDimensions, Fields: []SpecFieldDef{
		{Name: FieldLength, Unit: "mm", Type: FieldNumber},
		{Name: FieldWidth, Unit: "mm", Type: FieldNumber},
		{Name: FieldHeight, Unit: "mm", Type: FieldNumber},
		{Name: FieldWheelbase, Unit: "mm", Type: FieldNumber},
		{Name: FieldGroundClearance, Unit: "mm", Type: FieldNumber},
		{Name: FieldCurbWeight, Unit: "kg", Type: FieldNumber},
		{Name: FieldCargoVolume, Unit: "L", Type: FieldNumber},
		{Name: FieldSeatingCapacity, Unit: "seats", Type: FieldNumber},
	}},
}

// builtinFeatures is the built-in feature schema in declaration order.
var builtinFeatures = []struct {
	Category FeatureCategory
	Flags    []FeatureFlag
}{
	{FeatureSafety, []FeatureFlag{
		FlagAutomaticEmergencyBraking, FlagBackupCamera, FlagBlindSpotMonitoring,
		FlagLaneKeepingAssist, FlagAdaptiveCruiseControl, FlagParkingSensors, FlagSurroundViewCamera,
	}},
	{FeatureConvenience, []FeatureFlag{
		FlagKeylessEntry, FlagPushButtonStart, FlagPowerLiftgate,
		FlagWirelessCharging, FlagDualZoneClimate, FlagRemoteStart,
	}},
	{FeatureEntertainment, []FeatureFlag{
		FlagAppleCarPlay, FlagAndroidAuto, FlagPremiumAudio, FlagNavigationSystem, FlagRearSeatEntertainment,
	}},
	{FeatureExterior, []FeatureFlag{
		FlagLedHeadlights, FlagPanoramicSunroof, FlagPowerFoldingMirrors, FlagAlloyWheels, FlagRoofRails,
	}},
	{FeatureSeating, []FeatureFlag{
		FlagHeatedFrontSeats, FlagVentilatedSeats, FlagPowerDriverSeat,
		FlagMemorySeats, FlagLeatherUpholstery, FlagThirdRowSeating,
	}},
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the built-in registry. It is constructed on first use and
// shared afterwards.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := buildDefault()
		if err != nil {
			panic(fmt.Sprintf("catalog: invalid built-in schema: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

func buildDefault() (*Registry, error) {
	r := NewRegistry()
	for _, c := range builtinSpecs {
		if err := r.RegisterSpecCategory(c.Category, c.Fields...); err != nil {
			return nil, err
		}
	}
	for _, c := range builtinFeatures {
		if err := r.RegisterFeatureCategory(c.Category, c.Flags...); err != nil {
			return nil, err
		}
	}
	return r, nil
}
