package ir

// SetVersion is the schema version written into every RegistrationSet.
const SetVersion = "1"
