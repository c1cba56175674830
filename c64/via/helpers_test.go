package via

// TagTest is the snapshot tag used by chips built in tests.
const TagTest = "via.test"
