package category

type Category struct {
	Slug string
	Name string
	URL  string
}

func Find(list []Category, slug string) (Category, error) {
	for _, c := range list {
		if c.Slug == slug {
			return c, nil
		}
	}
	return Category{}, ErrCategoryNotFound
}
