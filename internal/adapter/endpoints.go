package adapter

import "fmt"

const (
	endpointLogin      = "/login"
	endpointLogout     = "/user/logout"
	endpointUser       = "/user"
	endpointProjects   = "/projects"
	endpointAlgorithms = "/algorithms"
)

func projectMutantsEndpoint(projectID int) string {
	return fmt.Sprintf("/projects/%d/mutants", projectID)
}

func projectFormFieldsEndpoint(projectID int) string {
	return fmt.Sprintf("/projects/%d/form-fields", projectID)
}

func projectAlgorithmEndpoint(projectID int) string {
	return fmt.Sprintf("/projects/%d/algorithm", projectID)
}

func mutantEndpoint(mutantID int) string {
	return fmt.Sprintf("/mutants/%d", mutantID)
}

func mutantSourceEndpoint(mutantID int) string {
	return fmt.Sprintf("/mutants/%d/source", mutantID)
}

func mutantRatingsEndpoint(mutantID int) string {
	return fmt.Sprintf("/mutants/%d/ratings", mutantID)
}
