package validator

import "voxform/internal/domain"

// Registry maps each schema field to its Validator.
type Registry struct {
	validators map[domain.FieldName]Validator
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[domain.FieldName]Validator)}
}

// NewDefaultRegistry returns a Registry with the built-in rule for every field.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(nameValidator{})
	r.Register(emailValidator{})
	r.Register(phoneValidator{})
	r.Register(addressValidator{})
	return r
}

// Register adds or replaces the validator for its field.
func (r *Registry) Register(v Validator) {
	r.validators[v.Field()] = v
}

// Get returns the validator for a field, or nil if none is registered.
func (r *Registry) Get(f domain.FieldName) Validator {
	return r.validators[f]
}

// Validate normalizes every present field. Fields without a validator pass unchanged.
// Rejected lists the fields dropped, in schema order.
func (r *Registry) Validate(fields domain.ExtractedFields) (valid domain.ExtractedFields, rejected []domain.FieldName) {
	valid = make(domain.ExtractedFields, len(fields))
	for _, f := range fields.Keys() {
		raw := fields.Get(f)
		v := r.validators[f]
		if v == nil {
			valid.Set(f, raw)
			continue
		}
		norm, ok := v.Normalize(raw)
		if !ok {
			rejected = append(rejected, f)
			continue
		}
		valid.Set(f, norm)
	}
	return valid, rejected
}
