package common

// --------------------------------------------------------------------------
// Command Name Definition
// --------------------------------------------------------------------------

// CommandName identifies a command of the JSON document module as it appears
// on the wire. Core store commands (GET, SET, DEL, ...) are plain strings of
// this type too; they simply have no entry in the response transform table.
type CommandName string

// String returns the wire name of the command.
func (c CommandName) String() string {
	return string(c)
}

// --------------------------------------------------------------------------
// Command Name Constants
// --------------------------------------------------------------------------

const (
	// Document writes

	CmdSet    CommandName = "JSON.SET"    // Store a document at a path
	CmdDel    CommandName = "JSON.DEL"    // Delete a path
	CmdForget CommandName = "JSON.FORGET" // Alias of JSON.DEL
	CmdClear  CommandName = "JSON.CLEAR"  // Empty containers, zero numbers

	// Document reads

	CmdGet  CommandName = "JSON.GET"  // Fetch a document or sub-path
	CmdMGet CommandName = "JSON.MGET" // Fetch one path from many keys
	CmdResp CommandName = "JSON.RESP" // Fetch the raw protocol form

	// Number operations

	CmdNumIncrBy CommandName = "JSON.NUMINCRBY" // Increment a number at a path
	CmdNumMultBy CommandName = "JSON.NUMMULTBY" // Multiply a number at a path

	// Boolean and string operations

	CmdToggle    CommandName = "JSON.TOGGLE"    // Flip a boolean at a path
	CmdStrAppend CommandName = "JSON.STRAPPEND" // Append to a string at a path
	CmdStrLen    CommandName = "JSON.STRLEN"    // Length of a string at a path

	// Array operations

	CmdArrAppend CommandName = "JSON.ARRAPPEND" // Append elements to an array
	CmdArrIndex  CommandName = "JSON.ARRINDEX"  // Find an element in an array
	CmdArrInsert CommandName = "JSON.ARRINSERT" // Insert elements into an array
	CmdArrLen    CommandName = "JSON.ARRLEN"    // Length of an array
	CmdArrPop    CommandName = "JSON.ARRPOP"    // Remove and return an element
	CmdArrTrim   CommandName = "JSON.ARRTRIM"   // Trim an array to a range

	// Object operations

	CmdObjKeys CommandName = "JSON.OBJKEYS" // Keys of an object at a path
	CmdObjLen  CommandName = "JSON.OBJLEN"  // Field count of an object

	// Introspection

	CmdDebug CommandName = "JSON.DEBUG" // Debug subcommands (MEMORY, HELP)
)

// AckToken is the simple-string acknowledgement a successful conditional
// write returns. The comparison against it is case-insensitive.
const AckToken = "OK"

// RootPath is the path addressing the whole document.
const RootPath = "$"
