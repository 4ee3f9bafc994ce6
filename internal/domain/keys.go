package domain

// KeyPrefix is the default namespace for every key srdex reads or writes.
// It is overridden by storage.key_prefix in config.
const KeyPrefix = "srdex:"
