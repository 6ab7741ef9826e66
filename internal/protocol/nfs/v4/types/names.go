package types

import "strconv"

// opNames maps every operation number in the NFSv4.2 table to its name.
// Membership in this map is what makes an opcode "known".
var opNames = map[uint32]string{
	OP_ACCESS:              "ACCESS",
	OP_CLOSE:               "CLOSE",
	OP_COMMIT:              "COMMIT",
	OP_CREATE:              "CREATE",
	OP_DELEGPURGE:          "DELEGPURGE",
	OP_DELEGRETURN:         "DELEGRETURN",
	OP_GETATTR:             "GETATTR",
	OP_GETFH:               "GETFH",
	OP_LINK:                "LINK",
	OP_LOCK:                "LOCK",
	OP_LOCKT:               "LOCKT",
	OP_LOCKU:               "LOCKU",
	OP_LOOKUP:              "LOOKUP",
	OP_LOOKUPP:             "LOOKUPP",
	OP_NVERIFY:             "NVERIFY",
	OP_OPEN:                "OPEN",
	OP_OPENATTR:            "OPENATTR",
	OP_OPEN_CONFIRM:        "OPEN_CONFIRM",
	OP_OPEN_DOWNGRADE:      "OPEN_DOWNGRADE",
	OP_PUTFH:               "PUTFH",
	OP_PUTPUBFH:            "PUTPUBFH",
	OP_PUTROOTFH:           "PUTROOTFH",
	OP_READ:                "READ",
	OP_READDIR:             "READDIR",
	OP_READLINK:            "READLINK",
	OP_REMOVE:              "REMOVE",
	OP_RENAME:              "RENAME",
	OP_RENEW:               "RENEW",
	OP_RESTOREFH:           "RESTOREFH",
	OP_SAVEFH:              "SAVEFH",
	OP_SECINFO:             "SECINFO",
	OP_SETATTR:             "SETATTR",
	OP_SETCLIENTID:         "SETCLIENTID",
	OP_SETCLIENTID_CONFIRM: "SETCLIENTID_CONFIRM",
	OP_VERIFY:              "VERIFY",
	OP_WRITE:               "WRITE",
	OP_RELEASE_LOCKOWNER:   "RELEASE_LOCKOWNER",

	// --- NFSv4.1 Operations ---
	OP_BACKCHANNEL_CTL:      "BACKCHANNEL_CTL",
	OP_BIND_CONN_TO_SESSION: "BIND_CONN_TO_SESSION",
	OP_EXCHANGE_ID:          "EXCHANGE_ID",
	OP_CREATE_SESSION:       "CREATE_SESSION",
	OP_DESTROY_SESSION:      "DESTROY_SESSION",
	OP_FREE_STATEID:         "FREE_STATEID",
	OP_GET_DIR_DELEGATION:   "GET_DIR_DELEGATION",
	OP_GETDEVICEINFO:        "GETDEVICEINFO",
	OP_GETDEVICELIST:        "GETDEVICELIST",
	OP_LAYOUTCOMMIT:         "LAYOUTCOMMIT",
	OP_LAYOUTGET:            "LAYOUTGET",
	OP_LAYOUTRETURN:         "LAYOUTRETURN",
	OP_SECINFO_NO_NAME:      "SECINFO_NO_NAME",
	OP_SEQUENCE:             "SEQUENCE",
	OP_SET_SSV:              "SET_SSV",
	OP_TEST_STATEID:         "TEST_STATEID",
	OP_WANT_DELEGATION:      "WANT_DELEGATION",
	OP_DESTROY_CLIENTID:     "DESTROY_CLIENTID",
	OP_RECLAIM_COMPLETE:     "RECLAIM_COMPLETE",

	// --- NFSv4.2 Operations ---
	OP_ALLOCATE:       "ALLOCATE",
	OP_COPY:           "COPY",
	OP_COPY_NOTIFY:    "COPY_NOTIFY",
	OP_DEALLOCATE:     "DEALLOCATE",
	OP_IO_ADVISE:      "IO_ADVISE",
	OP_LAYOUTERROR:    "LAYOUTERROR",
	OP_LAYOUTSTATS:    "LAYOUTSTATS",
	OP_OFFLOAD_CANCEL: "OFFLOAD_CANCEL",
	OP_OFFLOAD_STATUS: "OFFLOAD_STATUS",
	OP_READ_PLUS:      "READ_PLUS",
	OP_SEEK:           "SEEK",
	OP_WRITE_SAME:     "WRITE_SAME",
	OP_CLONE:          "CLONE",
}

// OpName returns a human-readable name for an NFSv4 operation number.
func OpName(op uint32) string {
	if name, ok := opNames[op]; ok {
		return name
	}
	if op == OP_ILLEGAL {
		return "ILLEGAL"
	}
	return "UNKNOWN"
}

// IsKnownOp reports whether op is in the NFSv4.2 operation table.
func IsKnownOp(op uint32) bool {
	_, ok := opNames[op]
	return ok
}

// statusNames covers the codes this server emits plus the common ones a
// backend mapping can produce. Used for log and metric labels.
var statusNames = map[uint32]string{
	NFS4_OK:                     "NFS4_OK",
	NFS4ERR_PERM:                "NFS4ERR_PERM",
	NFS4ERR_NOENT:               "NFS4ERR_NOENT",
	NFS4ERR_IO:                  "NFS4ERR_IO",
	NFS4ERR_NXIO:                "NFS4ERR_NXIO",
	NFS4ERR_ACCESS:              "NFS4ERR_ACCESS",
	NFS4ERR_EXIST:               "NFS4ERR_EXIST",
	NFS4ERR_XDEV:                "NFS4ERR_XDEV",
	NFS4ERR_NODEV:               "NFS4ERR_NODEV",
	NFS4ERR_NOTDIR:              "NFS4ERR_NOTDIR",
	NFS4ERR_ISDIR:               "NFS4ERR_ISDIR",
	NFS4ERR_INVAL:               "NFS4ERR_INVAL",
	NFS4ERR_FBIG:                "NFS4ERR_FBIG",
	NFS4ERR_NOSPC:               "NFS4ERR_NOSPC",
	NFS4ERR_ROFS:                "NFS4ERR_ROFS",
	NFS4ERR_MLINK:               "NFS4ERR_MLINK",
	NFS4ERR_NAMETOOLONG:         "NFS4ERR_NAMETOOLONG",
	NFS4ERR_NOTEMPTY:            "NFS4ERR_NOTEMPTY",
	NFS4ERR_DQUOT:               "NFS4ERR_DQUOT",
	NFS4ERR_STALE:               "NFS4ERR_STALE",
	NFS4ERR_BADHANDLE:           "NFS4ERR_BADHANDLE",
	NFS4ERR_BAD_COOKIE:          "NFS4ERR_BAD_COOKIE",
	NFS4ERR_NOTSUPP:             "NFS4ERR_NOTSUPP",
	NFS4ERR_TOOSMALL:            "NFS4ERR_TOOSMALL",
	NFS4ERR_SERVERFAULT:         "NFS4ERR_SERVERFAULT",
	NFS4ERR_BADTYPE:             "NFS4ERR_BADTYPE",
	NFS4ERR_DELAY:               "NFS4ERR_DELAY",
	NFS4ERR_LOCKED:              "NFS4ERR_LOCKED",
	NFS4ERR_RESOURCE:            "NFS4ERR_RESOURCE",
	NFS4ERR_NOFILEHANDLE:        "NFS4ERR_NOFILEHANDLE",
	NFS4ERR_MINOR_VERS_MISMATCH: "NFS4ERR_MINOR_VERS_MISMATCH",
	NFS4ERR_BAD_STATEID:         "NFS4ERR_BAD_STATEID",
	NFS4ERR_BADXDR:              "NFS4ERR_BADXDR",
	NFS4ERR_OP_ILLEGAL:          "NFS4ERR_OP_ILLEGAL",
	NFS4ERR_PARTNER_NOTSUPP:     "NFS4ERR_PARTNER_NOTSUPP",
	NFS4ERR_PARTNER_NO_AUTH:     "NFS4ERR_PARTNER_NO_AUTH",
	NFS4ERR_UNION_NOTSUPP:       "NFS4ERR_UNION_NOTSUPP",
	NFS4ERR_OFFLOAD_DENIED:      "NFS4ERR_OFFLOAD_DENIED",
	NFS4ERR_WRONG_LFS:           "NFS4ERR_WRONG_LFS",
	NFS4ERR_BADLABEL:            "NFS4ERR_BADLABEL",
	NFS4ERR_OFFLOAD_NO_REQS:     "NFS4ERR_OFFLOAD_NO_REQS",
}

// StatusName returns the symbolic name of an nfsstat4 value, or the decimal
// value for codes without a name.
func StatusName(status uint32) string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return strconv.FormatUint(uint64(status), 10)
}
