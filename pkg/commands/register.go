package commands

// Register wires every command vocabulary action (spec.md §6) onto
// deps.Registry. Call it once during bootstrap, after every subsystem
// in deps has been constructed.
func Register(deps Dependencies) {
	if deps.APIKeyLength <= 0 {
		deps.APIKeyLength = 32
	}
	registerBrainCommands(deps)
	registerAuthCommands(deps)
	registerConfigCommands(deps)
	registerProjectCommands(deps)
	registerEntityCommands(deps)
	registerQueryCommands(deps)
	registerExportCommands(deps)
	registerModuleCommands(deps)
	registerCronCommands(deps)
	registerParserHandlers(deps)
}
