package domain

// KeyPrefix namespaces every key docchat writes to the backing store.
const KeyPrefix = "docchat:"
