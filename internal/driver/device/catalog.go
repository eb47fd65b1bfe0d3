// internal/driver/device/catalog.go
// The command catalog: a declarative table of every command this
// package knows how to run, replacing the "template-heavy command
// classes" spec.md §9 calls out. Each CommandDescriptor fully describes
// a command's identity, privilege requirement, and mutation/targeting
// metadata; TransactionEngine.Run is the one generic function
// parameterized by a descriptor (see transaction.go).
package device

// Privilege is the access level a command requires before it may be
// submitted.
type Privilege int

const (
	PrivilegeNone Privilege = iota
	PrivilegeUser
	PrivilegeAdmin
)

// Command ids. These stand in for the token's published firmware opcodes
// (spec.md §1: "exact firmware opcodes are identified by symbolic name
// and must match the token's published command IDs") — the numeric
// values are placeholders in lieu of firmware documentation; callers and
// tests only ever reference the symbolic constants below.
const (
	cmdGetStatus byte = 0x80 + iota
	cmdGetSerialNumber
	cmdGetPasswordRetryCount
	cmdGetUserPasswordRetryCount
	cmdFirstAuthenticate
	cmdUserAuthenticate
	cmdLockDevice
	cmdWriteHotpSlot
	cmdWriteTotpSlot
	cmdEraseHotpSlot
	cmdEraseTotpSlot
	cmdReadSlot
	cmdGetHotpCode
	cmdGetHotpCodePin
	cmdGetTotpCode
	cmdGetTotpCodePin
	cmdWriteGeneralConfig
	cmdReadGeneralConfig
	cmdChangeAdminPin
	cmdChangeUserPin
	cmdUnlockUserPin
	cmdEnablePasswordSafe
	cmdGetPwsSlotStatus
	cmdGetPwsSlotName
	cmdGetPwsSlotLogin
	cmdGetPwsSlotPassword
	cmdWritePwsSlot
	cmdErasePwsSlot
	cmdFactoryReset
	cmdBuildAesKey
	cmdIsAesSupported
	cmdSetTime
	cmdGetTime
)

// Storage-only command ids, per stick20_commands.h.
const (
	cmdEnableEncryptedPartition byte = 0xC0 + iota
	cmdDisableEncryptedPartition
	cmdEnableHiddenEncryptedPartition
	cmdDisableHiddenEncryptedPartition
	cmdEnableFirmwareUpdate
	cmdChangeUpdatePin
	cmdExportFirmware
	cmdFillSDCardRandom
	cmdSetUncryptedVolumeRW
	cmdSetupHiddenVolume
	cmdLockFirmware
)

// CommandDescriptor statically describes one command: its id, the
// privilege it requires, whether it mutates device state, and whether
// it is restricted to Storage devices.
type CommandDescriptor struct {
	Name        string
	ID          byte
	Privilege   Privilege
	Mutates     bool
	StorageOnly bool
}

var catalog = map[string]*CommandDescriptor{
	"GetStatus":                 {Name: "GetStatus", ID: cmdGetStatus},
	"GetSerialNumber":           {Name: "GetSerialNumber", ID: cmdGetSerialNumber},
	"GetPasswordRetryCount":     {Name: "GetPasswordRetryCount", ID: cmdGetPasswordRetryCount},
	"GetUserPasswordRetryCount": {Name: "GetUserPasswordRetryCount", ID: cmdGetUserPasswordRetryCount},

	"FirstAuthenticate": {Name: "FirstAuthenticate", ID: cmdFirstAuthenticate},
	"UserAuthenticate":  {Name: "UserAuthenticate", ID: cmdUserAuthenticate},
	"LockDevice":        {Name: "LockDevice", ID: cmdLockDevice, Mutates: true},

	"WriteHotpSlot": {Name: "WriteHotpSlot", ID: cmdWriteHotpSlot, Privilege: PrivilegeAdmin, Mutates: true},
	"WriteTotpSlot": {Name: "WriteTotpSlot", ID: cmdWriteTotpSlot, Privilege: PrivilegeAdmin, Mutates: true},
	"EraseHotpSlot": {Name: "EraseHotpSlot", ID: cmdEraseHotpSlot, Privilege: PrivilegeAdmin, Mutates: true},
	"EraseTotpSlot": {Name: "EraseTotpSlot", ID: cmdEraseTotpSlot, Privilege: PrivilegeAdmin, Mutates: true},
	"ReadSlot":      {Name: "ReadSlot", ID: cmdReadSlot},

	"GetHotpCode":    {Name: "GetHotpCode", ID: cmdGetHotpCode},
	"GetHotpCodePin": {Name: "GetHotpCodePin", ID: cmdGetHotpCodePin, Privilege: PrivilegeUser},
	"GetTotpCode":    {Name: "GetTotpCode", ID: cmdGetTotpCode},
	"GetTotpCodePin": {Name: "GetTotpCodePin", ID: cmdGetTotpCodePin, Privilege: PrivilegeUser},

	"WriteGeneralConfig": {Name: "WriteGeneralConfig", ID: cmdWriteGeneralConfig, Privilege: PrivilegeAdmin, Mutates: true},
	"ReadGeneralConfig":  {Name: "ReadGeneralConfig", ID: cmdReadGeneralConfig},

	"ChangeAdminPin": {Name: "ChangeAdminPin", ID: cmdChangeAdminPin, Mutates: true},
	"ChangeUserPin":  {Name: "ChangeUserPin", ID: cmdChangeUserPin, Mutates: true},
	"UnlockUserPin":  {Name: "UnlockUserPin", ID: cmdUnlockUserPin, Mutates: true},

	"EnablePasswordSafe": {Name: "EnablePasswordSafe", ID: cmdEnablePasswordSafe},
	"GetPwsSlotStatus":   {Name: "GetPwsSlotStatus", ID: cmdGetPwsSlotStatus},
	"GetPwsSlotName":     {Name: "GetPwsSlotName", ID: cmdGetPwsSlotName},
	"GetPwsSlotLogin":    {Name: "GetPwsSlotLogin", ID: cmdGetPwsSlotLogin},
	"GetPwsSlotPassword": {Name: "GetPwsSlotPassword", ID: cmdGetPwsSlotPassword},
	"WritePwsSlot":       {Name: "WritePwsSlot", ID: cmdWritePwsSlot, Mutates: true},
	"ErasePwsSlot":       {Name: "ErasePwsSlot", ID: cmdErasePwsSlot, Mutates: true},

	"FactoryReset":    {Name: "FactoryReset", ID: cmdFactoryReset, Privilege: PrivilegeAdmin, Mutates: true},
	"BuildAesKey":     {Name: "BuildAesKey", ID: cmdBuildAesKey, Privilege: PrivilegeAdmin, Mutates: true},
	"IsAesSupported":  {Name: "IsAesSupported", ID: cmdIsAesSupported},
	"SetTime":         {Name: "SetTime", ID: cmdSetTime, Privilege: PrivilegeAdmin, Mutates: true},
	"GetTime":         {Name: "GetTime", ID: cmdGetTime},

	"EnableEncryptedPartition":        {Name: "EnableEncryptedPartition", ID: cmdEnableEncryptedPartition, StorageOnly: true, Mutates: true},
	"DisableEncryptedPartition":       {Name: "DisableEncryptedPartition", ID: cmdDisableEncryptedPartition, StorageOnly: true, Mutates: true},
	"EnableHiddenEncryptedPartition":  {Name: "EnableHiddenEncryptedPartition", ID: cmdEnableHiddenEncryptedPartition, StorageOnly: true, Mutates: true},
	"DisableHiddenEncryptedPartition": {Name: "DisableHiddenEncryptedPartition", ID: cmdDisableHiddenEncryptedPartition, StorageOnly: true, Mutates: true},
	"EnableFirmwareUpdate":            {Name: "EnableFirmwareUpdate", ID: cmdEnableFirmwareUpdate, StorageOnly: true, Mutates: true},
	"ChangeUpdatePin":                 {Name: "ChangeUpdatePin", ID: cmdChangeUpdatePin, StorageOnly: true, Mutates: true},
	"ExportFirmware":                  {Name: "ExportFirmware", ID: cmdExportFirmware, StorageOnly: true, Mutates: true},
	"FillSDCardRandom":                {Name: "FillSDCardRandom", ID: cmdFillSDCardRandom, StorageOnly: true, Mutates: true},
	// SetUncryptedVolumeRW: both read-only and read-write requests from
	// the original source share CommandID::ENABLE_READWRITE_UNCRYPTED_LUN
	// (see DESIGN.md, Open Question decisions); this single descriptor
	// covers both, with the mode carried in the request payload.
	"SetUncryptedVolumeRW": {Name: "SetUncryptedVolumeRW", ID: cmdSetUncryptedVolumeRW, StorageOnly: true, Mutates: true},
	"SetupHiddenVolume":    {Name: "SetupHiddenVolume", ID: cmdSetupHiddenVolume, StorageOnly: true, Mutates: true},
	"LockFirmware":         {Name: "LockFirmware", ID: cmdLockFirmware, StorageOnly: true, Mutates: true},
}

func descriptor(name string) *CommandDescriptor {
	d, ok := catalog[name]
	if !ok {
		panic("nitrokey: unknown command " + name) // programming error: catalog is static
	}
	return d
}
