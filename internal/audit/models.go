package audit

import "time"

// Entry is one who-did-what record. Append-only; created after the mutation
// it describes has committed.
type Entry struct {
	ID        int64     `db:"id" json:"id"`
	ActorName string    `db:"actor_name" json:"actorName"`
	ActorRole string    `db:"actor_role" json:"actorRole"`
	Action    string    `db:"action" json:"action"`
	Module    string    `db:"module" json:"module"`
	Detail    string    `db:"detail" json:"detail"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}

// Action verbs. Kept coarse; the free-text detail carries specifics.
const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionTransition = "transition"
	ActionLogin      = "login"
	ActionLogout     = "logout"
)

// Module names as they appear in the admin console's audit view.
const (
	ModuleUsers         = "users"
	ModuleAudits        = "audits"
	ModuleActions       = "corrective_actions"
	ModuleWeightControl = "weight_control"
	ModuleSuppliers     = "supplier_evaluations"
	ModuleRecalls       = "recalls"
	ModuleAuth          = "auth"
)
