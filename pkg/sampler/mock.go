package sampler

//MockEnumerator returns a fixed connection table for testing
type MockEnumerator struct {
	Conns []RawConnection
	Err   error
}

//Connections implements Enumerator
func (m *MockEnumerator) Connections() ([]RawConnection, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Conns, nil
}

//MockProcessNamer resolves pids from a fixed table for testing
type MockProcessNamer struct {
	Names map[int32]string
	Err   error
}

//Name implements ProcessNamer
func (m *MockProcessNamer) Name(pid int32) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Names[pid], nil
}
