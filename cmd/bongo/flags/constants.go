package flags

const Directory = `directory`
const Config = `config`
const LogLevel = `log-level`
const LogFormat = `log-format`
const Quiet = `quiet`
const InitWithForce = `force`
const ListAsTree = `tree`
const ListPlaylists = `playlists`
const SortDestination = `destination`
const SortIgnoringIndex = `ignore-db`
const SortWithAutoInit = `auto-init`
const DumpFormat = `format`
const ShowAsJSON = `json`
const EditWith = `editor`
