// Package types defines NFSv4.2 constants, status codes, and the COMPOUND
// request/response structures per RFC 7530, RFC 8881 and RFC 7862.
//
// Besides data definitions the package owns the COMPOUND argument codec:
// DecodeCompoundArgs turns the bytes after the RPC call header into a
// CompoundArgs whose operations are a closed set of typed variants.
package types

// ============================================================================
// RPC Program / Procedure Numbers (NFSv4)
// ============================================================================

const (
	// NFS4_PROGRAM is the ONC RPC program number for NFS.
	NFS4_PROGRAM = 100003

	// NFS4_VERSION is the only major version served.
	NFS4_VERSION = 4
)

// NFSv4 has only two RPC procedures per RFC 7530 Section 16.
const (
	// NFSPROC4_NULL is the null/ping procedure (procedure 0).
	NFSPROC4_NULL = 0

	// NFSPROC4_COMPOUND bundles multiple operations into a single RPC call
	// (procedure 1).
	NFSPROC4_COMPOUND = 1
)

// ============================================================================
// Protocol Limits
// ============================================================================

const (
	// NFS4_FHSIZE is the maximum file handle size in bytes (RFC 7530).
	NFS4_FHSIZE = 128

	NFS4_MINOR_VERSION_0 = 0
	NFS4_MINOR_VERSION_1 = 1
	NFS4_MINOR_VERSION_2 = 2

	// MaxCompoundOps limits the number of operations in a single COMPOUND
	// request. A larger count is rejected before any allocation.
	MaxCompoundOps = 128

	// MaxBitmapWords caps a decoded bitmap4 (8 words = 256 attribute bits).
	MaxBitmapWords = 8
)

// ============================================================================
// File Handle Expire Type (fh_expire_type4)
// ============================================================================

const (
	// FH4_PERSISTENT indicates file handles are persistent across server restarts.
	FH4_PERSISTENT = 0x00

	// FH4_VOLATILE_ANY indicates file handles may expire at any time.
	FH4_VOLATILE_ANY = 0x01
)

// ============================================================================
// NFSv4 File Type Constants (nfs_ftype4)
// ============================================================================

const (
	NF4REG       = 1 // Regular file
	NF4DIR       = 2 // Directory
	NF4BLK       = 3 // Block device
	NF4CHR       = 4 // Character device
	NF4LNK       = 5 // Symbolic link
	NF4SOCK      = 6 // Socket
	NF4FIFO      = 7 // Named pipe (FIFO)
	NF4ATTRDIR   = 8 // Attribute directory
	NF4NAMEDATTR = 9 // Named attribute
)

// ============================================================================
// NFSv4 Operation Numbers (nfs_opnum4)
// ============================================================================

// NFSv4.0 operations (RFC 7530 Section 16).
const (
	OP_ACCESS              = 3
	OP_CLOSE               = 4
	OP_COMMIT              = 5
	OP_CREATE              = 6
	OP_DELEGPURGE          = 7
	OP_DELEGRETURN         = 8
	OP_GETATTR             = 9
	OP_GETFH               = 10
	OP_LINK                = 11
	OP_LOCK                = 12
	OP_LOCKT               = 13
	OP_LOCKU               = 14
	OP_LOOKUP              = 15
	OP_LOOKUPP             = 16
	OP_NVERIFY             = 17
	OP_OPEN                = 18
	OP_OPENATTR            = 19
	OP_OPEN_CONFIRM        = 20
	OP_OPEN_DOWNGRADE      = 21
	OP_PUTFH               = 22
	OP_PUTPUBFH            = 23
	OP_PUTROOTFH           = 24
	OP_READ                = 25
	OP_READDIR             = 26
	OP_READLINK            = 27
	OP_REMOVE              = 28
	OP_RENAME              = 29
	OP_RENEW               = 30
	OP_RESTOREFH           = 31
	OP_SAVEFH              = 32
	OP_SECINFO             = 33
	OP_SETATTR             = 34
	OP_SETCLIENTID         = 35
	OP_SETCLIENTID_CONFIRM = 36
	OP_VERIFY              = 37
	OP_WRITE               = 38
	OP_RELEASE_LOCKOWNER   = 39
)

// NFSv4.1 operations (RFC 8881 Section 18).
const (
	OP_BACKCHANNEL_CTL      = 40
	OP_BIND_CONN_TO_SESSION = 41
	OP_EXCHANGE_ID          = 42
	OP_CREATE_SESSION       = 43
	OP_DESTROY_SESSION      = 44
	OP_FREE_STATEID         = 45
	OP_GET_DIR_DELEGATION   = 46
	OP_GETDEVICEINFO        = 47
	OP_GETDEVICELIST        = 48
	OP_LAYOUTCOMMIT         = 49
	OP_LAYOUTGET            = 50
	OP_LAYOUTRETURN         = 51
	OP_SECINFO_NO_NAME      = 52
	OP_SEQUENCE             = 53
	OP_SET_SSV              = 54
	OP_TEST_STATEID         = 55
	OP_WANT_DELEGATION      = 56
	OP_DESTROY_CLIENTID     = 57
	OP_RECLAIM_COMPLETE     = 58
)

// NFSv4.2 operations (RFC 7862 Section 15).
const (
	OP_ALLOCATE       = 59
	OP_COPY           = 60
	OP_COPY_NOTIFY    = 61
	OP_DEALLOCATE     = 62
	OP_IO_ADVISE      = 63
	OP_LAYOUTERROR    = 64
	OP_LAYOUTSTATS    = 65
	OP_OFFLOAD_CANCEL = 66
	OP_OFFLOAD_STATUS = 67
	OP_READ_PLUS      = 68
	OP_SEEK           = 69
	OP_WRITE_SAME     = 70
	OP_CLONE          = 71
)

// OP_ILLEGAL is reserved for operation numbers outside the table.
const OP_ILLEGAL = 10044

// ============================================================================
// NFSv4 Status Codes (nfsstat4)
// ============================================================================

const (
	NFS4_OK = 0 // Success

	// POSIX-derived error codes (same values as NFSv3 equivalents)
	NFS4ERR_PERM        = 1  // Not owner (EPERM)
	NFS4ERR_NOENT       = 2  // No such file or directory (ENOENT)
	NFS4ERR_IO          = 5  // I/O error (EIO)
	NFS4ERR_NXIO        = 6  // No such device or address (ENXIO)
	NFS4ERR_ACCESS      = 13 // Permission denied (EACCES)
	NFS4ERR_EXIST       = 17 // File exists (EEXIST)
	NFS4ERR_XDEV        = 18 // Cross-device link (EXDEV)
	NFS4ERR_NODEV       = 19 // No such device (ENODEV)
	NFS4ERR_NOTDIR      = 20 // Not a directory (ENOTDIR)
	NFS4ERR_ISDIR       = 21 // Is a directory (EISDIR)
	NFS4ERR_INVAL       = 22 // Invalid argument (EINVAL)
	NFS4ERR_FBIG        = 27 // File too large (EFBIG)
	NFS4ERR_NOSPC       = 28 // No space left on device (ENOSPC)
	NFS4ERR_ROFS        = 30 // Read-only filesystem (EROFS)
	NFS4ERR_MLINK       = 31 // Too many links (EMLINK)
	NFS4ERR_NAMETOOLONG = 63 // Filename too long (ENAMETOOLONG)
	NFS4ERR_NOTEMPTY    = 66 // Directory not empty (ENOTEMPTY)
	NFS4ERR_DQUOT       = 69 // Disk quota exceeded (EDQUOT)
	NFS4ERR_STALE       = 70 // Stale file handle (ESTALE)

	// NFSv4-specific error codes (10000+ range)
	NFS4ERR_BADHANDLE           = 10001
	NFS4ERR_BAD_COOKIE          = 10003
	NFS4ERR_NOTSUPP             = 10004
	NFS4ERR_TOOSMALL            = 10005
	NFS4ERR_SERVERFAULT         = 10006
	NFS4ERR_BADTYPE             = 10007
	NFS4ERR_DELAY               = 10008
	NFS4ERR_SAME                = 10009
	NFS4ERR_DENIED              = 10010
	NFS4ERR_EXPIRED             = 10011
	NFS4ERR_LOCKED              = 10012
	NFS4ERR_GRACE               = 10013
	NFS4ERR_FHEXPIRED           = 10014
	NFS4ERR_SHARE_DENIED        = 10015
	NFS4ERR_WRONGSEC            = 10016
	NFS4ERR_CLID_INUSE          = 10017
	NFS4ERR_RESOURCE            = 10018
	NFS4ERR_MOVED               = 10019
	NFS4ERR_NOFILEHANDLE        = 10020
	NFS4ERR_MINOR_VERS_MISMATCH = 10021
	NFS4ERR_STALE_CLIENTID      = 10022
	NFS4ERR_STALE_STATEID       = 10023
	NFS4ERR_OLD_STATEID         = 10024
	NFS4ERR_BAD_STATEID         = 10025
	NFS4ERR_BAD_SEQID           = 10026
	NFS4ERR_NOT_SAME            = 10027
	NFS4ERR_LOCK_RANGE          = 10028
	NFS4ERR_SYMLINK             = 10029
	NFS4ERR_RESTOREFH           = 10030
	NFS4ERR_LEASE_MOVED         = 10031
	NFS4ERR_ATTRNOTSUPP         = 10032
	NFS4ERR_NO_GRACE            = 10033
	NFS4ERR_RECLAIM_BAD         = 10034
	NFS4ERR_RECLAIM_CONFLICT    = 10035
	NFS4ERR_BADXDR              = 10036
	NFS4ERR_LOCKS_HELD          = 10037
	NFS4ERR_OPENMODE            = 10038
	NFS4ERR_BADOWNER            = 10039
	NFS4ERR_BADCHAR             = 10040
	NFS4ERR_BADNAME             = 10041
	NFS4ERR_BAD_RANGE           = 10042
	NFS4ERR_LOCK_NOTSUPP        = 10043
	NFS4ERR_OP_ILLEGAL          = 10044
	NFS4ERR_DEADLOCK            = 10045
	NFS4ERR_FILE_OPEN           = 10046
	NFS4ERR_ADMIN_REVOKED       = 10047
	NFS4ERR_CB_PATH_DOWN        = 10048
)

// --- NFSv4.2 Error Codes (RFC 7862 Section 11.1) ---

const (
	NFS4ERR_PARTNER_NOTSUPP = 10088 // Server-side copy partner unsupported
	NFS4ERR_PARTNER_NO_AUTH = 10089 // Copy partner refused authorization
	NFS4ERR_UNION_NOTSUPP   = 10090 // Arm of union not supported
	NFS4ERR_OFFLOAD_DENIED  = 10091 // Offloaded copy denied
	NFS4ERR_WRONG_LFS       = 10092 // Wrong labeled format
	NFS4ERR_BADLABEL        = 10093 // Incorrect security label
	NFS4ERR_OFFLOAD_NO_REQS = 10094 // No offload requirements satisfied
)
